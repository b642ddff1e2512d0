package application

import (
	"context"
	"regexp"
	"strings"

	"github.com/example/studygroup/internal/document"
)

// timePattern matches the 24h "HH:MM" form availability slots use.
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var weekdayLabels = map[string]struct{}{
	"Monday":    {},
	"Tuesday":   {},
	"Wednesday": {},
	"Thursday":  {},
	"Friday":    {},
	"Saturday":  {},
	"Sunday":    {},
}

// validateSlot checks a slot's day label, time format, and ordering. Start
// must precede End; with the fixed-width "HH:MM" form the lexical comparison
// is also the chronological one.
func validateSlot(slot document.Availability) *ValidationError {
	vErr := &ValidationError{}

	if _, ok := weekdayLabels[slot.Day]; !ok {
		vErr.add("day", "day must be a weekday name, e.g. \"Monday\"")
	}
	startOK := timePattern.MatchString(slot.Start)
	endOK := timePattern.MatchString(slot.End)
	if !startOK {
		vErr.add("start", "start must be in HH:MM form")
	}
	if !endOK {
		vErr.add("end", "end must be in HH:MM form")
	}
	if startOK && endOK && slot.Start >= slot.End {
		vErr.add("end", "end must be after start")
	}

	return vErr
}

// AddAvailability records a weekly availability slot for the current user.
// Adding a slot that already exists is a no-op, not an error.
func (s *Store) AddAvailability(ctx context.Context, day, start, end string) (document.Availability, error) {
	slot := document.Availability{
		Day:   strings.TrimSpace(day),
		Start: strings.TrimSpace(start),
		End:   strings.TrimSpace(end),
	}

	err := s.update(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		if vErr := validateSlot(slot); vErr.HasErrors() {
			return vErr
		}

		for i := range doc.Users {
			if doc.Users[i].ID != user.ID {
				continue
			}
			for _, existing := range doc.Users[i].Availability {
				if existing == slot {
					return errNoChange
				}
			}
			doc.Users[i].Availability = append(doc.Users[i].Availability, slot)
			return nil
		}
		return ErrNotAuthenticated
	})
	if err != nil {
		return document.Availability{}, err
	}
	return slot, nil
}

// RemoveAvailability deletes the slot equal to the given one on all three
// fields. A missing slot is a no-op.
func (s *Store) RemoveAvailability(ctx context.Context, slot document.Availability) error {
	return s.update(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		for i := range doc.Users {
			if doc.Users[i].ID != user.ID {
				continue
			}
			kept := make([]document.Availability, 0, len(doc.Users[i].Availability))
			for _, existing := range doc.Users[i].Availability {
				if existing == slot {
					continue
				}
				kept = append(kept, existing)
			}
			if len(kept) == len(doc.Users[i].Availability) {
				return errNoChange
			}
			doc.Users[i].Availability = kept
			return nil
		}
		return errNoChange
	})
}

// MyAvailability returns the current user's availability slots in insertion
// order.
func (s *Store) MyAvailability(ctx context.Context) ([]document.Availability, error) {
	var slots []document.Availability
	err := s.view(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}
		slots = make([]document.Availability, len(user.Availability))
		copy(slots, user.Availability)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}
