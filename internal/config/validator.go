package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern      = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	profileNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	spaceIDPattern     = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	classTokenPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("profile_name", func(fl validator.FieldLevel) bool {
			return profileNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("space_id", func(fl validator.FieldLevel) bool {
			return spaceIDPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("class_token", func(fl validator.FieldLevel) bool {
			return classTokenPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return glimmererrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	profileIndex := make(map[string]int, len(cfg.Profiles))

	for i, profile := range cfg.Profiles {
		if _, exists := profileIndex[profile.Name]; exists {
			return glimmererrors.NewValidationError(fieldForProfile(i, "name"), fmt.Sprintf("duplicate profile name %q", profile.Name), nil)
		}
		profileIndex[profile.Name] = i

		if err := ValidateProfile(profile, i); err != nil {
			return err
		}
	}

	return nil
}

// ValidateProfile validates a single profile independent of the rest of the configuration.
func ValidateProfile(profile Profile, index int) error {
	v := validatorInstance()
	if err := v.Struct(profile); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]struct{}, len(profile.Plugins))
	for _, spec := range profile.Plugins {
		if _, dup := seen[spec.Type]; dup {
			return glimmererrors.NewValidationError(
				fieldForProfile(index, "plugins"),
				fmt.Sprintf("plugin %q appears more than once", spec.Type), nil)
		}
		seen[spec.Type] = struct{}{}

		if err := ValidatePluginSpec(profile.Name, spec); err != nil {
			return err
		}
	}

	return nil
}

// ValidatePluginSpec validates one plugin entry of a profile pipeline.
func ValidatePluginSpec(profileName string, spec PluginSpec) error {
	v := validatorInstance()
	if err := v.Struct(spec); err != nil {
		return convertValidationError(err)
	}

	switch spec.Type {
	case "placeholder":
		if spec.Placeholder == nil {
			return glimmererrors.NewValidationError(profileName, "placeholder configuration is required", nil)
		}
		if err := v.Struct(spec.Placeholder); err != nil {
			return convertValidationError(err)
		}
	case "responsive":
		if spec.Responsive == nil {
			return glimmererrors.NewValidationError(profileName, "responsive configuration is required", nil)
		}
		if err := v.Struct(spec.Responsive); err != nil {
			return convertValidationError(err)
		}
	case "accessibility":
		if spec.Accessibility == nil {
			return glimmererrors.NewValidationError(profileName, "accessibility configuration is required", nil)
		}
		if err := v.Struct(spec.Accessibility); err != nil {
			return convertValidationError(err)
		}
	case "lazyload":
		if spec.Lazyload == nil {
			return glimmererrors.NewValidationError(profileName, "lazyload configuration is required", nil)
		}
	default:
		return glimmererrors.NewValidationError(profileName, fmt.Sprintf("unknown plugin type %q", spec.Type), nil)
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return glimmererrors.NewValidationError(field, msg, err)
	}

	return glimmererrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForProfile(index int, field string) string {
	return fmt.Sprintf("profiles[%d].%s", index, field)
}
