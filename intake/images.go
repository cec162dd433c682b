package intake

import (
	"context"
	"fmt"
	"io"

	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/workflow"
)

// AddImage uploads a photo and attaches it to the intake. The upload runs outside the
// intake lock.
func (s *Service) AddImage(ctx context.Context, caller *models.Session, id, filename string, r io.Reader) (*models.Intake, error) {
	var vin string
	if _, err := s.update(ctx, caller, id, func(in *models.Intake) error {
		if err := canAttach(in); err != nil {
			return err
		}
		vin = in.Vehicle.VIN
		return nil
	}); err != nil {
		return nil, err
	}

	img, err := s.images.Upload(ctx, token(caller), vin, filename, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return s.update(ctx, caller, id, func(in *models.Intake) error {
		if err := canAttach(in); err != nil {
			return err
		}
		in.Images = append(in.Images, img)
		return nil
	})
}

// RemoveImage deletes a photo from the store and the intake
func (s *Service) RemoveImage(ctx context.Context, caller *models.Session, id, imageID string) (*models.Intake, error) {
	in, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if indexOf(in.Images, imageID) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, imageID)
	}

	if err := s.images.Delete(ctx, token(caller), imageID); err != nil {
		return nil, fmt.Errorf("failed to delete image: %w", err)
	}

	return s.update(ctx, caller, id, func(in *models.Intake) error {
		if i := indexOf(in.Images, imageID); i >= 0 {
			in.Images = append(in.Images[:i], in.Images[i+1:]...)
		}
		return nil
	})
}

func canAttach(in *models.Intake) error {
	if in.Vehicle.VIN == "" {
		return fmt.Errorf("%w: add images after the VIN is decoded", workflow.ErrInvalidTransition)
	}
	if in.Workflow.Phase == workflow.PhaseSuccess || in.Workflow.Phase == workflow.PhaseSubmitting {
		return fmt.Errorf("%w: add images during %s", workflow.ErrInvalidTransition, in.Workflow.Phase)
	}
	if len(in.Images) >= MaxImages {
		return ErrTooManyImages
	}
	return nil
}

func indexOf(imgs []models.Image, id string) int {
	for i, img := range imgs {
		if img.ID == id {
			return i
		}
	}
	return -1
}

func token(caller *models.Session) string {
	if caller == nil {
		return ""
	}
	return caller.UpstreamToken
}
