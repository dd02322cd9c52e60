package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultLanguage is applied when the submission does not name a language.
const DefaultLanguage = "English"

// SupportedLanguages lists the languages offered by the craft form. Any other
// value is still accepted and passed through to the generators.
var SupportedLanguages = []string{
	"English",
	"Hindi",
	"Bengali",
	"Tamil",
	"Telugu",
	"Marathi",
	"Gujarati",
	"Kannada",
	"Malayalam",
	"Punjabi",
	"Urdu",
	"Other",
}

// Amount is a numeric form value. The form posts numbers as strings, so both
// "12.5" and 12.5 are accepted. The raw text is kept for interpolation.
type Amount struct {
	raw   string
	value float64
	valid bool
}

// NewAmount builds an Amount from its textual form.
func NewAmount(raw string) Amount {
	raw = strings.TrimSpace(raw)
	a := Amount{raw: raw}
	if raw == "" {
		return a
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return a
	}
	a.value = v
	a.valid = true
	return a
}

// String returns the amount exactly as submitted.
func (a Amount) String() string { return a.raw }

// Float returns the parsed value; unparseable input counts as zero.
func (a Amount) Float() float64 {
	if !a.valid {
		return 0
	}
	return a.value
}

// Valid reports whether the raw text parsed as a finite number.
func (a Amount) Valid() bool { return a.valid }

// Empty reports whether no value was submitted.
func (a Amount) Empty() bool { return a.raw == "" }

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = NewAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or numeric string: %w", err)
	}
	*a = NewAmount(n.String())
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.raw)
}

// CraftSubmission is the structured description of a craft sent by the form.
type CraftSubmission struct {
	CraftType         string `json:"craftType"`
	Region            string `json:"region"`
	Motif             string `json:"motif"`
	ArtisanJourney    string `json:"artisanJourney"`
	MaterialCost      Amount `json:"materialCost"`
	HoursWorked       Amount `json:"hoursWorked"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// Normalize trims text fields and applies the language default.
func (s *CraftSubmission) Normalize() {
	if s == nil {
		return
	}
	s.CraftType = strings.TrimSpace(s.CraftType)
	s.Region = strings.TrimSpace(s.Region)
	s.Motif = strings.TrimSpace(s.Motif)
	s.ArtisanJourney = strings.TrimSpace(s.ArtisanJourney)
	s.PreferredLanguage = strings.TrimSpace(s.PreferredLanguage)
	if s.PreferredLanguage == "" {
		s.PreferredLanguage = DefaultLanguage
	}
}

// Validate checks the required fields. Every problem is reported, not only the first.
func (s CraftSubmission) Validate() error {
	var problems []string
	required := []struct {
		name  string
		value string
	}{
		{"craftType", s.CraftType},
		{"region", s.Region},
		{"motif", s.Motif},
		{"artisanJourney", s.ArtisanJourney},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is required")
		}
	}
	problems = append(problems, checkAmount("materialCost", s.MaterialCost)...)
	problems = append(problems, checkAmount("hoursWorked", s.HoursWorked)...)
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

func checkAmount(name string, a Amount) []string {
	switch {
	case a.Empty():
		return []string{name + " is required"}
	case !a.Valid():
		return []string{name + " must be numeric"}
	case a.Float() < 0:
		return []string{name + " must not be negative"}
	}
	return nil
}

// IsSupportedLanguage reports whether lang is one of the form's languages.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

// ValidationError lists the problems found in a submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid submission: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSubmission }
