package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Unit представляет организационное подразделение
type Unit struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ParentID  *int64    `json:"parent_id" gorm:"index"`
	Type      string    `json:"type" gorm:"type:varchar(100);not null"`
	Title     string    `json:"title" gorm:"type:varchar(200);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Parent    *Unit      `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Children  []Unit     `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Positions []Position `json:"positions,omitempty" gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE"`
}

// TableName задаёт имя таблицы для GORM
func (Unit) TableName() string {
	return "units"
}

// Position - должность внутри подразделения; занята не более чем одним сотрудником
type Position struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UnitID      int64     `json:"unit_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	IsAvailable bool      `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Unit *Unit `json:"-" gorm:"foreignKey:UnitID"`
}

// TableName задаёт имя таблицы для GORM
func (Position) TableName() string {
	return "positions"
}

// EmployeeStatus - статус сотрудника; сотрудники не удаляются, а отключаются
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeDisabled EmployeeStatus = "disabled"
)

// Employee представляет сотрудника, идентифицируемого матрикулом YYYY-NNN
type Employee struct {
	Matricule         string         `json:"matricule" gorm:"primaryKey;type:varchar(16)"`
	PositionID        *int64         `json:"position_id" gorm:"index"`
	UserID            *int64         `json:"user_id" gorm:"uniqueIndex"`
	Name              string         `json:"name" gorm:"type:varchar(200);not null"`
	FirstName         string         `json:"first_name" gorm:"type:varchar(200);not null"`
	IsEquipped        bool           `json:"is_equipped" gorm:"not null;default:false"`
	Status            EmployeeStatus `json:"status" gorm:"type:varchar(20);not null;default:active"`
	EntryDate         time.Time      `json:"entry_date" gorm:"type:date;not null"`
	SuperiorMatricule *string        `json:"superior_matricule" gorm:"type:varchar(16);index"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	Position *Position `json:"-" gorm:"foreignKey:PositionID;constraint:OnDelete:SET NULL"`
	Superior *Employee `json:"-" gorm:"foreignKey:SuperiorMatricule;references:Matricule;constraint:OnDelete:SET NULL"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return "employees"
}

// Role - дискриминатор учётной записи
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUnitChief Role = "unit_chief"
	RoleRecruit   Role = "recruit"
)

// User - учётная запись
type User struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username   string    `json:"username" gorm:"type:varchar(100);not null;uniqueIndex"`
	Matricule  *string   `json:"matricule" gorm:"type:varchar(16);index"`
	Role       Role      `json:"role" gorm:"type:varchar(20);not null"`
	IsActive   bool      `json:"is_active" gorm:"not null;default:false"`
	SuperiorID *int64    `json:"superior_id" gorm:"index"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`

	Superior *User `json:"-" gorm:"foreignKey:SuperiorID;constraint:OnDelete:SET NULL"`
}

// TableName задаёт имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// ResourceState - состояние доступности ресурса
type ResourceState string

const (
	StateFree    ResourceState = "Libre"
	StatePending ResourceState = "Pend"
	StateHeld    ResourceState = "Pris"
)

// Resource - разделяемый ресурс (оборудование, учётный доступ)
type Resource struct {
	ID              int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Label           string        `json:"label" gorm:"type:varchar(200);not null"`
	Category        string        `json:"category" gorm:"type:varchar(100);not null"`
	Description     string        `json:"description" gorm:"type:varchar(255)"`
	State           ResourceState `json:"state" gorm:"type:varchar(10);not null;default:Libre;index"`
	HolderMatricule *string       `json:"holder_matricule" gorm:"type:varchar(16);index"`
	AttributionDate *time.Time    `json:"attribution_date"`
	ChiefID         int64         `json:"chief_id" gorm:"not null;index"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	Holder *Employee `json:"-" gorm:"foreignKey:HolderMatricule;references:Matricule;constraint:OnDelete:SET NULL"`
	Chief  *User     `json:"-" gorm:"foreignKey:ChiefID"`
}

// TableName задаёт имя таблицы для GORM
func (Resource) TableName() string {
	return "resources"
}

// Request - запрос на получение ресурса.
// На ресурс может ссылаться не более одного открытого запроса (частичный уникальный индекс).
type Request struct {
	ID                   int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	RequesterID          *int64    `json:"requester_id" gorm:"index"`
	BeneficiaryMatricule string    `json:"beneficiary_matricule" gorm:"type:varchar(16);not null;index"`
	ResourceID           int64     `json:"resource_id" gorm:"not null;index:idx_requests_open_resource,unique,where:is_open"`
	ReceiverID           int64     `json:"receiver_id" gorm:"not null;index"`
	RequestDate          time.Time `json:"request_date" gorm:"type:date;not null"`
	IsOpen               bool      `json:"is_open" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Validation *Validation `json:"validation,omitempty" gorm:"foreignKey:RequestID"`
	Resource   *Resource   `json:"-" gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE"`
}

// TableName задаёт имя таблицы для GORM
func (Request) TableName() string {
	return "requests"
}

// ValidationStatus - статус решения по запросу
type ValidationStatus string

const (
	ValidationPending  ValidationStatus = "En attente"
	ValidationApproved ValidationStatus = "Approuvé"
	ValidationRejected ValidationStatus = "Rejeté"
)

// IsTerminal сообщает, что решение окончательное
func (s ValidationStatus) IsTerminal() bool {
	return s == ValidationApproved || s == ValidationRejected
}

// Validation - решение по запросу (1:1 с Request)
type Validation struct {
	ID              int64            `json:"id" gorm:"primaryKey;autoIncrement"`
	RequestID       int64            `json:"request_id" gorm:"not null;uniqueIndex"`
	ValidatorID     int64            `json:"validator_id" gorm:"not null;index"`
	Status          ValidationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ValidationDate  *time.Time       `json:"validation_date"`
	DeliveryDate    *time.Time       `json:"delivery_date"`
	RejectionReason *string          `json:"rejection_reason" gorm:"type:varchar(255)"`
	CreatedAt       time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName задаёт имя таблицы для GORM
func (Validation) TableName() string {
	return "validations"
}

// Типы событий уведомлений
const (
	EventRequestUpdate = "request_update"
	EventValidation    = "validation_update"
	EventResource      = "resource_update"
)

// Notification - уведомление, адресованное одному пользователю
type Notification struct {
	ID        int64             `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64             `json:"user_id" gorm:"not null;index"`
	EventType string            `json:"event_type" gorm:"type:varchar(100);not null"`
	Message   string            `json:"message" gorm:"type:text;not null"`
	Data      datatypes.JSONMap `json:"data"`
	IsRead    bool              `json:"is_read" gorm:"not null;default:false"`
	CreatedAt time.Time         `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName задаёт имя таблицы для GORM
func (Notification) TableName() string {
	return "notifications"
}

// Models перечисляет сущности для AutoMigrate
func Models() []any {
	return []any{
		&Unit{},
		&Position{},
		&User{},
		&Employee{},
		&Resource{},
		&Request{},
		&Validation{},
		&Notification{},
	}
}
