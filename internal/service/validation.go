package service

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

var (
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	gstPattern     = regexp.MustCompile(`^[0-9A-Z]{15}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{10,13}$`)
	phoneStripper  = strings.NewReplacer(" ", "", "-", "")
)

const maxReasonLength = 500

// NormalizeDeliveryAddress trims every field and upper-cases the GST number.
func NormalizeDeliveryAddress(addr *models.DeliveryAddress) {
	addr.StoreName = strings.TrimSpace(addr.StoreName)
	addr.Address = strings.TrimSpace(addr.Address)
	addr.City = strings.TrimSpace(addr.City)
	addr.State = strings.TrimSpace(addr.State)
	addr.Pincode = strings.TrimSpace(addr.Pincode)
	addr.GSTNumber = strings.ToUpper(strings.TrimSpace(addr.GSTNumber))
	addr.ContactPerson = strings.TrimSpace(addr.ContactPerson)
	addr.Phone = phoneStripper.Replace(strings.TrimSpace(addr.Phone))
}

// ValidateDeliveryAddress checks a normalized address. All failing fields are
// reported in the error's Details.
func ValidateDeliveryAddress(addr *models.DeliveryAddress) error {
	details := make(map[string]string)

	required := []struct {
		field, value string
	}{
		{"store_name", addr.StoreName},
		{"address", addr.Address},
		{"city", addr.City},
		{"state", addr.State},
		{"pincode", addr.Pincode},
		{"phone", addr.Phone},
	}
	for _, r := range required {
		if r.value == "" {
			details[r.field] = r.field + " is required"
		}
	}

	if addr.Pincode != "" && !pincodePattern.MatchString(addr.Pincode) {
		details["pincode"] = "pincode must be 6 digits"
	}
	if addr.GSTNumber != "" && !gstPattern.MatchString(addr.GSTNumber) {
		details["gst_number"] = "GST number must be 15 letters or digits"
	}
	if addr.Phone != "" && !phonePattern.MatchString(addr.Phone) {
		details["phone"] = "phone number is invalid"
	}

	if len(details) == 0 {
		return nil
	}

	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	return &errors.ValidationError{
		Field:   "delivery_address." + fields[0],
		Message: details[fields[0]],
		Details: details,
	}
}

// ValidateUpdateStatusRequest validates a status update request.
func ValidateUpdateStatusRequest(req *models.UpdateStatusRequest) (models.OrderStatus, error) {
	if strings.TrimSpace(req.Status) == "" {
		return "", errors.NewValidationError("status", "status is required")
	}
	if len(req.Reason) > maxReasonLength {
		return "", errors.NewValidationError("reason", "reason too long (max 500 characters)")
	}
	return models.ParseOrderStatus(req.Status)
}

// SanitizeReason escapes markup in free-text reasons.
func SanitizeReason(reason string) string {
	reason = strings.ReplaceAll(reason, "<", "&lt;")
	reason = strings.ReplaceAll(reason, ">", "&gt;")
	reason = strings.ReplaceAll(reason, "\"", "&quot;")
	return strings.TrimSpace(reason)
}
