package schedule

import (
	"regexp"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/timeac/core"
)

var (
	aliasTag   = "alias"
	aliasText  = "only a single alphanumeric character is allowed"
	aliasRegex = regexp.MustCompile(`^[a-zA-Z0-9]?$`)
)

// InitValidators registers the schedule validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(aliasTag, aliasValidation)
	core.RegisterCustomTranslation(validate, translator, aliasTag, aliasText)
}

// aliasValidation only allows an empty alias or one alphanumeric character.
func aliasValidation(fl validator.FieldLevel) bool {
	return aliasRegex.MatchString(fl.Field().String())
}

// ValidateCollection checks every schedule and the collection-wide invariants:
// unique schedule ids and unique block ids within a schedule.
func ValidateCollection(validate *validator.Validate, schedules []Schedule) error {
	seen := make(map[int]bool, len(schedules))
	for i := range schedules {
		s := &schedules[i]
		s.Description = core.CleanString(s.Description)
		s.StartTime = core.CleanString(s.StartTime)
		if err := validate.Struct(s); err != nil {
			return err
		}
		if seen[s.ID] {
			return core.NewFieldValidationError("id", "duplicate schedule id "+strconv.Itoa(s.ID))
		}
		seen[s.ID] = true

		blockIDs := make(map[int]bool, len(s.Blocks))
		for j := range s.Blocks {
			b := &s.Blocks[j]
			b.Name = core.CleanString(b.Name)
			if blockIDs[b.ID] {
				return core.NewFieldValidationError(
					"blocks", "duplicate block id "+strconv.Itoa(b.ID)+" in schedule "+strconv.Itoa(s.ID),
				)
			}
			blockIDs[b.ID] = true
		}
	}
	return nil
}

// ValidateEdit cleans and validates a block edit.
func ValidateEdit(validate *validator.Validate, edit *BlockEdit) error {
	if edit.IsEmpty() {
		return core.NewValidationError(errNothingToEdit)
	}
	if edit.Name != nil {
		name := core.CleanString(*edit.Name)
		edit.Name = &name
	}
	if edit.Alias != nil {
		alias := Alias(core.CleanString(string(*edit.Alias)))
		edit.Alias = &alias
	}
	return validate.Struct(edit)
}

// StartTimeUpdate is the request body for changing a schedule's start time.
type StartTimeUpdate struct {
	StartTime string `json:"startTime" validate:"required,clock"`
}

func (u *StartTimeUpdate) Validate(validate *validator.Validate) error {
	u.StartTime = core.CleanString(u.StartTime)
	return validate.Struct(u)
}
