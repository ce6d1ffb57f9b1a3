// Package profile stores the local user's onboarding state and profile.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Potowai/nomad-nantes/internal/kv"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	// OnboardingKey flags a completed onboarding.
	OnboardingKey = "nomad_onboarding_done"
	// ProfileKey holds the JSON encoded Profile.
	ProfileKey = "nomad_user_profile"

	onboardingDone = "true"
)

// ErrInvalidProfile indicates a profile failing validation.
var ErrInvalidProfile = errors.New("profile: invalid profile")

// Profile is the local user's identity.
type Profile struct {
	Name string `json:"name" validate:"required,max=80"`
	Age  int    `json:"age" validate:"gte=0,lte=130"`
}

// Default is reported until onboarding stores a profile.
var Default = Profile{Name: "Moi", Age: 0}

// Storage is the key/value persistence the service writes to.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Has(key string) (bool, error)
}

// Service reads and writes the profile and the onboarding flag.
type Service struct {
	storage  Storage
	validate *validator.Validate
	logger   *zap.Logger
}

func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage:  storage,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// OnboardingDone reports whether onboarding has been completed.
func (s *Service) OnboardingDone() (bool, error) {
	return s.storage.Has(OnboardingKey)
}

// Complete validates and stores the profile, then flags onboarding as done.
func (s *Service) Complete(profile Profile) (Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if err := s.validate.Struct(profile); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	payload, err := json.Marshal(profile)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: encode: %w", err)
	}
	if err := s.storage.Set(ProfileKey, payload); err != nil {
		return Profile{}, err
	}
	if err := s.storage.Set(OnboardingKey, []byte(onboardingDone)); err != nil {
		return Profile{}, err
	}
	s.logger.Info("onboarding completed", zap.String("name", profile.Name))
	return profile, nil
}

// Load returns the stored profile, or Default when none is stored or the
// stored value cannot be decoded.
func (s *Service) Load() (Profile, error) {
	payload, err := s.storage.Get(ProfileKey)
	if errors.Is(err, kv.ErrNotFound) {
		return Default, nil
	}
	if err != nil {
		return Profile{}, err
	}
	var profile Profile
	if err := json.Unmarshal(payload, &profile); err != nil {
		s.logger.Warn("stored profile unreadable, using default", zap.Error(err))
		return Default, nil
	}
	return profile, nil
}

// AvatarURL returns the generated avatar image for a user name.
func AvatarURL(name string) string {
	seed := strings.TrimSpace(name)
	if seed == "" {
		seed = "me"
	}
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/200"
}
