package service_test

import (
	"github.com/resource-request-api/internal/broadcast"
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
)

func (s *ServiceSuite) seedUnitTree() (root, child, grandchild *domain.Unit) {
	var err error
	root, err = s.units.Create(s.ctx, &dto.CreateUnitRequest{Type: "division", Title: "Root"})
	s.Require().NoError(err)
	child, err = s.units.Create(s.ctx, &dto.CreateUnitRequest{Type: "department", Title: "Child", ParentID: &root.ID})
	s.Require().NoError(err)
	grandchild, err = s.units.Create(s.ctx, &dto.CreateUnitRequest{Type: "team", Title: "Grandchild", ParentID: &child.ID})
	s.Require().NoError(err)
	return root, child, grandchild
}

func (s *ServiceSuite) TestUnitCreate_UnknownParent() {
	_, err := s.units.Create(s.ctx, &dto.CreateUnitRequest{Type: "team", Title: "Orphan", ParentID: ptr(int64(999))})
	s.ErrorIs(err, domain.ErrUnitNotFound)
}

func (s *ServiceSuite) TestUnitGet_Depth() {
	root, _, _ := s.seedUnitTree()

	shallow, err := s.units.GetByID(s.ctx, root.ID, &dto.GetUnitQuery{Depth: 1})
	s.Require().NoError(err)
	s.Require().Len(shallow.Children, 1)
	s.Empty(shallow.Children[0].Children)

	deep, err := s.units.GetByID(s.ctx, root.ID, &dto.GetUnitQuery{Depth: 2})
	s.Require().NoError(err)
	s.Require().Len(deep.Children, 1)
	s.Len(deep.Children[0].Children, 1)
}

func (s *ServiceSuite) TestUnitUpdate_RejectsCycles() {
	root, child, grandchild := s.seedUnitTree()

	_, err := s.units.Update(s.ctx, root.ID, &dto.UpdateUnitRequest{ParentID: &root.ID})
	s.ErrorIs(err, domain.ErrSelfReference)

	_, err = s.units.Update(s.ctx, root.ID, &dto.UpdateUnitRequest{ParentID: &grandchild.ID})
	s.ErrorIs(err, domain.ErrCyclicReference)

	_, err = s.units.Update(s.ctx, child.ID, &dto.UpdateUnitRequest{ParentID: ptr(int64(999))})
	s.ErrorIs(err, domain.ErrUnitNotFound)

	moved, err := s.units.Update(s.ctx, grandchild.ID, &dto.UpdateUnitRequest{ParentID: &root.ID, Title: ptr(" Team ")})
	s.Require().NoError(err)
	s.Equal(root.ID, *moved.ParentID)
	s.Equal("Team", moved.Title)
}

func (s *ServiceSuite) TestUnitDelete_Reassign() {
	root, child, grandchild := s.seedUnitTree()
	childPos, err := s.positions.Create(s.ctx, child.ID, &dto.CreatePositionRequest{Title: "Engineer"})
	s.Require().NoError(err)
	grandPos, err := s.positions.Create(s.ctx, grandchild.ID, &dto.CreatePositionRequest{Title: "Intern"})
	s.Require().NoError(err)

	err = s.units.Delete(s.ctx, child.ID, &dto.DeleteUnitQuery{Mode: "reassign"})
	s.ErrorIs(err, domain.ErrReassignTargetRequired)

	err = s.units.Delete(s.ctx, child.ID, &dto.DeleteUnitQuery{Mode: "reassign", ReassignToUnitID: &child.ID})
	s.ErrorIs(err, domain.ErrCannotReassignToSelf)

	err = s.units.Delete(s.ctx, child.ID, &dto.DeleteUnitQuery{Mode: "reassign", ReassignToUnitID: &grandchild.ID})
	s.ErrorIs(err, domain.ErrCannotReassignToSelf)

	err = s.units.Delete(s.ctx, child.ID, &dto.DeleteUnitQuery{Mode: "reassign", ReassignToUnitID: ptr(int64(999))})
	s.ErrorIs(err, domain.ErrReassignTargetNotFound)

	err = s.units.Delete(s.ctx, child.ID, &dto.DeleteUnitQuery{Mode: "reassign", ReassignToUnitID: &root.ID})
	s.Require().NoError(err)

	positions, err := s.positions.GetByUnitID(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Require().Len(positions, 2)
	s.Equal(childPos.ID, positions[0].ID)
	s.Equal(grandPos.ID, positions[1].ID)

	_, err = s.units.GetByID(s.ctx, grandchild.ID, &dto.GetUnitQuery{})
	s.ErrorIs(err, domain.ErrUnitNotFound)

	s.flush()
	s.Equal(1, s.publisher.count(broadcast.EntityUnit, broadcast.ActionDeleted))
}

func (s *ServiceSuite) TestUnitDelete_Cascade() {
	root, child, _ := s.seedUnitTree()
	pos, err := s.positions.Create(s.ctx, child.ID, &dto.CreatePositionRequest{Title: "Engineer"})
	s.Require().NoError(err)

	err = s.units.Delete(s.ctx, child.ID, &dto.DeleteUnitQuery{Mode: "purge"})
	s.ErrorIs(err, domain.ErrInvalidDeleteMode)

	s.Require().NoError(s.units.Delete(s.ctx, child.ID, &dto.DeleteUnitQuery{Mode: "cascade"}))

	_, err = s.repo.positions.GetByID(s.ctx, pos.ID)
	s.ErrorIs(err, domain.ErrPositionNotFound)

	left, err := s.units.GetByID(s.ctx, root.ID, &dto.GetUnitQuery{Depth: 5})
	s.Require().NoError(err)
	s.Empty(left.Children)
}

func (s *ServiceSuite) TestPositionList_UnknownUnit() {
	_, err := s.positions.GetByUnitID(s.ctx, 999)
	s.ErrorIs(err, domain.ErrUnitNotFound)

	_, err = s.positions.Create(s.ctx, 999, &dto.CreatePositionRequest{Title: "Ghost"})
	s.ErrorIs(err, domain.ErrUnitNotFound)
}
