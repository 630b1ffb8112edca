package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"coffeehouse/internal/domain"
	"coffeehouse/internal/repository"
)

type profileForm struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,phone"`
	Address string `json:"address"`
}

// ProfileService контакты для предзаполнения формы оформления
type ProfileService struct {
	repo     *repository.ProfileRepository
	validate *validator.Validate
}

func NewProfileService(repo *repository.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo, validate: newValidator()}
}

// Get сохранённые контакты или пустые, если их ещё нет
func (s *ProfileService) Get(ctx context.Context) (domain.UserInfo, error) {
	info, err := s.repo.UserInfo(ctx)
	if err != nil || info == nil {
		return domain.UserInfo{}, err
	}
	return *info, nil
}

func (s *ProfileService) Save(ctx context.Context, info domain.UserInfo) (domain.UserInfo, error) {
	form := profileForm{
		Name:    strings.TrimSpace(info.Name),
		Phone:   strings.TrimSpace(info.Phone),
		Address: strings.TrimSpace(info.Address),
	}
	if err := s.validate.Struct(form); err != nil {
		return domain.UserInfo{}, validationError(err)
	}
	saved := domain.UserInfo(form)
	if err := s.repo.SaveUserInfo(ctx, saved); err != nil {
		return domain.UserInfo{}, err
	}
	return saved, nil
}
