package checkout

import (
	"fmt"
	"net/url"
	"strconv"
)

// BuildUPIURL assembles the upi://pay deep link the client hands to the
// user's payment app. The tr field carries the payment reference so the
// transfer can be matched to the order by hand if needed.
func BuildUPIURL(payeeVPA, payeeName string, amount float64, orderID int64, paymentRef string) string {
	q := url.Values{}
	q.Set("pa", payeeVPA)
	if payeeName != "" {
		q.Set("pn", payeeName)
	}
	q.Set("am", strconv.FormatFloat(amount, 'f', 2, 64))
	q.Set("cu", "INR")
	q.Set("tn", fmt.Sprintf("Book Purchase - Order %d", orderID))
	if paymentRef != "" {
		q.Set("tr", paymentRef)
	}
	return "upi://pay?" + q.Encode()
}
