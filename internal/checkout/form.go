package checkout

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/terra-clan/unicorn-emporium/internal/models"
)

// ErrInvalidForm is returned by Form.Validate
var ErrInvalidForm = errors.New("invalid checkout form")

// Form holds the customer input collected at checkout
type Form struct {
	Name     string
	Email    string
	Address  string
	Delivery models.DeliveryMethod
}

// Validate checks that every required field is present and well formed
func (f *Form) Validate() error {
	var problems []string

	if strings.TrimSpace(f.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(f.Email) == "" {
		problems = append(problems, "email is required")
	} else if _, err := mail.ParseAddress(f.Email); err != nil {
		problems = append(problems, "email is not a valid address")
	}
	if strings.TrimSpace(f.Address) == "" {
		problems = append(problems, "address is required")
	}
	if f.Delivery == "" {
		problems = append(problems, "delivery method is required")
	} else if !f.Delivery.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown delivery method %q", f.Delivery))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidForm, strings.Join(problems, "; "))
	}
	return nil
}

// Reset clears every field
func (f *Form) Reset() {
	*f = Form{}
}
