package checkout

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/backend-kedai/internal/cart"
	"github.com/noah-isme/backend-kedai/internal/payment"
	"github.com/noah-isme/backend-kedai/internal/pricing"
)

// Options carries the display inputs that come from site settings and the
// chosen payment method.
type Options struct {
	SiteName          string
	CurrencySymbol    string
	PaymentMethodName string
}

// RenderOrderSummary renders the order text handed to the messaging app. It
// does not refuse an empty cart; callers decide whether checkout may proceed.
func RenderOrderSummary(c *cart.Cart, info CustomerInfo, opts Options) string {
	info = info.Normalize()
	var b strings.Builder

	fmt.Fprintf(&b, "🛒 %s ORDER\n\n", opts.SiteName)
	fmt.Fprintf(&b, "👤 Customer: %s\n", info.Name)
	fmt.Fprintf(&b, "📞 Contact: %s\n", info.Contact)
	fmt.Fprintf(&b, "📍 Service: %s\n", capitalize(string(info.ServiceType)))
	switch info.ServiceType {
	case ServiceDelivery:
		fmt.Fprintf(&b, "🏠 Address: %s\n", info.Address)
		if info.Landmark != "" {
			fmt.Fprintf(&b, "🗺️ Landmark: %s\n", info.Landmark)
		}
	case ServicePickup:
		fmt.Fprintf(&b, "⏰ Pickup Time: %s\n", PickupLabel(info))
	}

	b.WriteString("\n📋 ORDER DETAILS:\n")
	var lines []cart.Line
	if c != nil {
		lines = c.Lines
	}
	for _, line := range lines {
		b.WriteString(lineText(line, opts.CurrencySymbol))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\n💰 TOTAL: %s\n", pricing.Format(c.Total(), opts.CurrencySymbol))
	methodName := opts.PaymentMethodName
	if methodName == "" {
		methodName = info.PaymentMethod
	}
	fmt.Fprintf(&b, "💳 Payment: %s\n", methodName)
	if strings.EqualFold(info.PaymentMethod, payment.CashOnDelivery) {
		b.WriteString("💵 Payment Status: Cash on Delivery\n")
	} else {
		b.WriteString("📸 Payment Screenshot: Please attach your payment receipt screenshot\n")
	}
	if info.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Notes: %s\n", info.Notes)
	}
	fmt.Fprintf(&b, "\nPlease confirm this order to proceed. Thank you for choosing %s! 🍽️", opts.SiteName)
	return b.String()
}

func lineText(line cart.Line, symbol string) string {
	var b strings.Builder
	b.WriteString("• ")
	b.WriteString(line.Name)
	var choice []string
	if line.Variation != nil {
		choice = append(choice, line.Variation.Name)
	}
	if line.Flavor != "" {
		choice = append(choice, line.Flavor)
	}
	if len(choice) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(choice, ", "))
	}
	if len(line.AddOns) > 0 {
		names := make([]string, 0, len(line.AddOns))
		for _, sel := range line.AddOns {
			if sel.Count > 1 {
				names = append(names, fmt.Sprintf("%s x%d", sel.AddOn.Name, sel.Count))
				continue
			}
			names = append(names, sel.AddOn.Name)
		}
		b.WriteString(" + ")
		b.WriteString(strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, " x%d - %s", line.Quantity, pricing.Format(line.TotalPrice, symbol))
	return b.String()
}

// PickupLabel describes when a pickup order will be collected.
func PickupLabel(info CustomerInfo) string {
	if info.PickupTime == PickupCustom {
		return formatClock(info.CustomTime)
	}
	if info.PickupTime == "" {
		return DefaultPickup + " minutes"
	}
	return info.PickupTime + " minutes"
}

// formatClock converts HH:MM to a 12 hour clock. Unparseable input is returned
// unchanged.
func formatClock(hhmm string) string {
	hour, minute, ok := strings.Cut(hhmm, ":")
	if !ok {
		return hhmm
	}
	h, err := strconv.Atoi(hour)
	if err != nil || h < 0 || h > 23 {
		return hhmm
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	switch {
	case h == 0:
		h = 12
	case h > 12:
		h -= 12
	}
	return fmt.Sprintf("%d:%s %s", h, minute, period)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// MessengerURL builds the deep link that opens a conversation with the store
// page prefilled with the summary. An empty handle yields an empty link.
func MessengerURL(handle, summary string) string {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return ""
	}
	return "https://m.me/" + url.PathEscape(handle) + "?text=" + strings.ReplaceAll(url.QueryEscape(summary), "+", "%20")
}
