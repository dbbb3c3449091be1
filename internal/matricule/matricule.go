// Package matricule форматирует и разбирает табельные номера вида YYYY-NNN.
package matricule

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxSequence - последний допустимый порядковый номер в пределах года
const MaxSequence = 999

// ErrOverflow возвращается, когда последовательность года исчерпана
var ErrOverflow = fmt.Errorf("matricule sequence exceeds %d", MaxSequence)

// Prefix возвращает префикс для поиска матрикулов года: "2024-"
func Prefix(year int) string {
	return fmt.Sprintf("%04d-", year)
}

// Format собирает матрикул из года и порядкового номера
func Format(year, seq int) string {
	return fmt.Sprintf("%04d-%03d", year, seq)
}

// Parse разбирает матрикул на год и порядковый номер
func Parse(m string) (year, seq int, err error) {
	y, s, ok := strings.Cut(m, "-")
	if !ok || len(y) != 4 || len(s) != 3 {
		return 0, 0, fmt.Errorf("invalid matricule %q", m)
	}
	if year, err = strconv.Atoi(y); err != nil {
		return 0, 0, fmt.Errorf("invalid matricule year %q: %w", m, err)
	}
	if seq, err = strconv.Atoi(s); err != nil {
		return 0, 0, fmt.Errorf("invalid matricule sequence %q: %w", m, err)
	}
	return year, seq, nil
}

// Next вычисляет следующий матрикул года по последнему выданному.
// Пустой last означает, что в году ещё нет сотрудников.
func Next(year int, last string) (string, error) {
	if last == "" {
		return Format(year, 1), nil
	}

	lastYear, seq, err := Parse(last)
	if err != nil {
		return "", err
	}
	if lastYear != year {
		return "", fmt.Errorf("matricule %q does not belong to year %d", last, year)
	}
	if seq >= MaxSequence {
		return "", ErrOverflow
	}

	return Format(year, seq+1), nil
}
