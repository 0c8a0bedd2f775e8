// user_service.go
package service

import (
	"context"
	"strings"

	"opt-shop/internal/apperror"
	"opt-shop/internal/dto"
	"opt-shop/internal/model"

	"github.com/sirupsen/logrus"
)

type UserService struct {
	users UserRepository
	log   *logrus.Logger
}

func NewUserService(users UserRepository, log *logrus.Logger) *UserService {
	return &UserService{users: users, log: log}
}

type SupplierList struct {
	Suppliers []*model.User `json:"suppliers"`
	model.PageInfo
}

func (s *UserService) ListSuppliers(ctx context.Context, q dto.SupplierQuery) (*SupplierList, error) {
	p := q.Pagination()
	users, total, err := s.users.ListSuppliers(ctx, strings.TrimSpace(q.Search), p)
	if err != nil {
		return nil, err
	}
	return &SupplierList{Suppliers: users, PageInfo: model.NewPageInfo(p, total)}, nil
}

func (s *UserService) GetSupplier(ctx context.Context, id string) (*model.User, error) {
	uid, err := parseID(id, apperror.ErrSupplierNotFound)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindActiveByID(ctx, uid)
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrSupplierNotFound)
	}
	return u, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	uid, err := parseID(userID, apperror.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrUserNotFound)
	}
	return u, nil
}

// UpdateProfile merges the provided business-profile keys onto the caller's
// profile. Verification and rating cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*model.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := u.Profile
	req.ApplyTo(&profile)

	updated, err := s.users.UpdateProfile(ctx, u.ID, &profile)
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrUserNotFound)
	}
	s.log.WithField("userId", userID).Info("profile updated")
	return updated, nil
}
