package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MaheshMoholkar/ignite-lms/internal/adapter/storage"
	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

type BannerInput struct {
	Title    string
	SubTitle string
	Image    *ThumbnailUpload
}

type LayoutInput struct {
	Type       string
	Banner     *BannerInput
	FAQ        []entity.FAQItem
	Categories []entity.TitleItem
}

type LayoutService interface {
	Create(ctx context.Context, input LayoutInput) (*entity.Layout, error)
	Edit(ctx context.Context, input LayoutInput) (*entity.Layout, error)
	GetByType(ctx context.Context, layoutType string) (*entity.Layout, error)
}

type layoutService struct {
	layoutRepo repository.LayoutRepository
	objStorage storage.ObjectStorage
	log        logger.Logger
}

func NewLayoutService(layoutRepo repository.LayoutRepository, objStorage storage.ObjectStorage, log logger.Logger) LayoutService {
	return &layoutService{layoutRepo: layoutRepo, objStorage: objStorage, log: log}
}

func validLayoutType(t string) bool {
	return t == entity.LayoutBanner || t == entity.LayoutFAQ || t == entity.LayoutCategories
}

func (s *layoutService) Create(ctx context.Context, input LayoutInput) (*entity.Layout, error) {
	if !validLayoutType(input.Type) {
		return nil, fmt.Errorf("%w: unknown layout type %q", ErrValidation, input.Type)
	}

	if _, err := s.layoutRepo.GetByType(ctx, input.Type); err == nil {
		return nil, ErrLayoutExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	layout, err := s.buildLayout(ctx, input, nil)
	if err != nil {
		return nil, err
	}

	if _, err := s.layoutRepo.Create(ctx, layout); err != nil {
		if layout.Banner != nil && layout.Banner.Image.PublicID != "" {
			_ = s.objStorage.Remove(ctx, layout.Banner.Image.PublicID)
		}
		return nil, err
	}
	return layout, nil
}

func (s *layoutService) Edit(ctx context.Context, input LayoutInput) (*entity.Layout, error) {
	if !validLayoutType(input.Type) {
		return nil, fmt.Errorf("%w: unknown layout type %q", ErrValidation, input.Type)
	}

	existing, err := s.layoutRepo.GetByType(ctx, input.Type)
	if err != nil {
		return nil, err
	}

	layout, err := s.buildLayout(ctx, input, existing)
	if err != nil {
		return nil, err
	}
	layout.ID = existing.ID

	if err := s.layoutRepo.Update(ctx, layout); err != nil {
		return nil, err
	}

	// Replacing the banner image invalidates the old object.
	if input.Banner != nil && input.Banner.Image != nil &&
		existing.Banner != nil && existing.Banner.Image.PublicID != "" {
		if err := s.objStorage.Remove(ctx, existing.Banner.Image.PublicID); err != nil {
			s.log.Warnf("failed to remove replaced banner image: %v", err)
		}
	}
	return layout, nil
}

func (s *layoutService) GetByType(ctx context.Context, layoutType string) (*entity.Layout, error) {
	if !validLayoutType(layoutType) {
		return nil, fmt.Errorf("%w: unknown layout type %q", ErrValidation, layoutType)
	}
	return s.layoutRepo.GetByType(ctx, layoutType)
}

func (s *layoutService) buildLayout(ctx context.Context, input LayoutInput, existing *entity.Layout) (*entity.Layout, error) {
	layout := &entity.Layout{
		Type:       input.Type,
		FAQ:        input.FAQ,
		Categories: input.Categories,
	}

	if input.Type == entity.LayoutBanner {
		if input.Banner == nil {
			return nil, fmt.Errorf("%w: banner layout requires banner content", ErrValidation)
		}
		banner := &entity.Banner{
			Title:    input.Banner.Title,
			SubTitle: input.Banner.SubTitle,
		}
		switch {
		case input.Banner.Image != nil:
			ref, err := s.objStorage.Upload(ctx, input.Banner.Image.FileName, input.Banner.Image.ContentType, input.Banner.Image.Data)
			if err != nil {
				if errors.Is(err, storage.ErrUnsupportedMediaType) {
					return nil, fmt.Errorf("%w: %v", ErrValidation, err)
				}
				return nil, err
			}
			banner.Image = *ref
		case existing != nil && existing.Banner != nil:
			banner.Image = existing.Banner.Image
		default:
			return nil, fmt.Errorf("%w: banner layout requires an image", ErrValidation)
		}
		layout.Banner = banner
	}

	return layout, nil
}
