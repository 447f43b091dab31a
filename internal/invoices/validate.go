package invoices

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/moralesdev/storeapi-backend/pkg/errors"
)

func trimmedNumber(number string) string {
	return strings.TrimSpace(number)
}

// validateSubmission applies the per-invoice field checks: required fields,
// date ordering and paid/paymentDate consistency. Referential existence and
// number uniqueness are checked separately because they need the database.
func validateSubmission(in CreateInvoiceInput) error {
	if len(in.OrderIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "orderIds is required")
	}
	if trimmedNumber(in.InvoiceNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoiceNumber is required")
	}
	if strings.TrimSpace(in.Currency) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "currency is required")
	}
	if strings.TrimSpace(in.BillingName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "billingName is required")
	}
	if in.IssueDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "issueDate is required")
	}
	if in.DueDate != nil && in.DueDate.Before(in.IssueDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "dueDate cannot be earlier than issueDate")
	}
	if in.IsPaid && in.PaymentDate == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "paymentDate is required when isPaid is true")
	}
	return nil
}

// distinctOrderIDs deduplicates while preserving first-seen order.
func distinctOrderIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	distinct := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	return distinct
}

func missingOrderIDsError(requested []int, found map[int]struct{}) error {
	missing := make([]int, 0)
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Ints(missing)
	parts := make([]string, len(missing))
	for i, id := range missing {
		parts[i] = strconv.Itoa(id)
	}
	return pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("unknown orderIds: %s", strings.Join(parts, ", "))).
		WithDetails(map[string]any{"missingOrderIds": missing})
}

// duplicateNumbersInBatch returns the trimmed invoice numbers that appear more
// than once, in first-occurrence order. Comparison is case-sensitive.
func duplicateNumbersInBatch(inputs []CreateInvoiceInput) []string {
	counts := make(map[string]int, len(inputs))
	order := make([]string, 0, len(inputs))
	for _, in := range inputs {
		number := trimmedNumber(in.InvoiceNumber)
		if number == "" {
			continue
		}
		if counts[number] == 0 {
			order = append(order, number)
		}
		counts[number]++
	}
	duplicates := make([]string, 0)
	for _, number := range order {
		if counts[number] > 1 {
			duplicates = append(duplicates, number)
		}
	}
	return duplicates
}
