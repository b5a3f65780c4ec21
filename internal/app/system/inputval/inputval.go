// Package inputval validates request inputs with waffle/pantry/validate.
//
// Handlers copy cleaned request values into a small struct carrying
// validate and label tags, then call Validate. Messages are written for
// the public site, so they name the field by its label:
//
//	type bookingInput struct {
//	    FullName  string `json:"fullName" validate:"required" label:"Full name"`
//	    EventDate string `json:"eventDate" validate:"required,eventdate" label:"Event date"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.Fail(w, http.StatusBadRequest, res.First())
//	    return
//	}
package inputval

import (
	"net/mail"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/reelfolio/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// Result collects the failures from one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First is the message shown to the visitor, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// rule is a custom validate rule and the message it produces.
type rule struct {
	name    string
	ok      func(s string) bool
	message func(label string) string
}

func oneOf(label string, values []string) string {
	return label + " must be one of: " + strings.Join(values, ", ") + "."
}

// rules are the domain checks registered on top of pantry/validate's
// built-ins. Platform and status may be blank; the model fills defaults.
var rules = []rule{
	{
		name:    "videocategory",
		ok:      models.IsValidVideoCategory,
		message: func(l string) string { return oneOf(l, models.AllVideoCategories()) },
	},
	{
		name:    "videoplatform",
		ok:      func(s string) bool { return s == "" || models.IsValidVideoPlatform(s) },
		message: func(l string) string { return oneOf(l, models.AllVideoPlatforms()) },
	},
	{
		name:    "videostatus",
		ok:      func(s string) bool { return s == "" || models.IsValidVideoStatus(s) },
		message: func(l string) string { return oneOf(l, models.AllVideoStatuses()) },
	},
	{
		name: "bookingstatus",
		ok:   models.IsValidBookingStatus,
		message: func(string) string {
			return "Invalid status. Must be one of: " + strings.Join(models.AllBookingStatuses(), ", ") + "."
		},
	},
	{
		name: "eventdate",
		ok: func(s string) bool {
			_, err := models.ParseEventDate(s)
			return err == nil
		},
		message: func(l string) string { return l + " must be a valid date (YYYY-MM-DD)" },
	},
}

var (
	validatorOnce sync.Once
	validator     *validate.Validator
	messages      map[string]func(label string) string
)

func get() *validate.Validator {
	validatorOnce.Do(func() {
		validator = validate.New(validate.WithStopOnFirstError())
		messages = map[string]func(string) string{
			"required": func(l string) string { return l + " is required." },
			"email":    func(string) string { return "A valid email address is required." },
		}
		for _, rl := range rules {
			check := rl.ok
			validator.RegisterRuleFunc(rl.name, func(value any) bool {
				s, ok := value.(string)
				return ok && check(strings.TrimSpace(s))
			}, rl.name)
			messages[rl.name] = rl.message
		}
	})
	return validator
}

// Validate checks s (a struct or pointer to one) against its validate tags.
func Validate(s any) *Result {
	res := &Result{}
	err := get().Struct(s)
	if err == nil {
		return res
	}
	errs, ok := err.(validate.Errors)
	if !ok {
		return res
	}

	labels := labelsOf(s)
	for _, e := range errs {
		label := labels[e.Field]
		if label == "" {
			label = e.Field
		}
		msg := label + " is invalid."
		if m, ok := messages[e.Rule]; ok {
			msg = m(label)
		}
		res.Errors = append(res.Errors, FieldError{Field: e.Field, Label: label, Message: msg})
	}
	return res
}

// labelsOf maps each field's reported name (its json name when it has
// one) to its label tag.
func labelsOf(s any) map[string]string {
	labels := map[string]string{}
	v := reflect.Indirect(reflect.ValueOf(s))
	if v.Kind() != reflect.Struct {
		return labels
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		label := f.Tag.Get("label")
		if label == "" {
			continue
		}
		name := f.Name
		if j, _, _ := strings.Cut(f.Tag.Get("json"), ","); j != "" && j != "-" {
			name = j
		}
		labels[name] = label
	}
	return labels
}

// IsValidEmail reports whether email is a bare RFC 5322 address
// ("Name <addr>" forms are rejected).
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
