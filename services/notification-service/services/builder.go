package services

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yashrajoria/storefront/services/common/money"
	"github.com/yashrajoria/storefront/services/notification-service/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type kindConfig struct {
	tmplFile   string
	subject    string // fmt pattern, receives short id then store name
	toMerchant bool
}

var kindConfigs = map[models.Kind]kindConfig{
	models.KindOrderConfirmation: {
		tmplFile: "templates/order_confirmation.html",
		subject:  "Order #%s confirmed at %s",
	},
	models.KindStatusUpdate: {
		tmplFile: "templates/status_update.html",
		subject:  "Update on your order #%s from %s",
	},
	models.KindMerchantNotice: {
		tmplFile:   "templates/merchant_notice.html",
		subject:    "New order received #%s at %s",
		toMerchant: true,
	},
}

// Builder renders notifications. The output depends only on kind and summary.
type Builder struct {
	fromAddress string
	templates   map[models.Kind]*template.Template
}

func NewBuilder(fromAddress string) (*Builder, error) {
	if fromAddress == "" {
		return nil, fmt.Errorf("from address is required")
	}
	tmpls := make(map[models.Kind]*template.Template, len(kindConfigs))
	for kind, cfg := range kindConfigs {
		tmpl, err := template.ParseFS(templateFS, cfg.tmplFile)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template for %s: %w", kind, err)
		}
		tmpls[kind] = tmpl
	}
	return &Builder{fromAddress: fromAddress, templates: tmpls}, nil
}

type templateData struct {
	ShortID    string
	StoreName  string
	BuyerEmail string
	Status     string
	Total      string
	Items      []models.LineSummary
}

// Build returns the rendered message for kind.
func (b *Builder) Build(kind models.Kind, s models.OrderSummary) (models.Message, error) {
	cfg, ok := kindConfigs[kind]
	if !ok {
		return models.Message{}, fmt.Errorf("unsupported notification kind: %s", kind)
	}

	to := s.BuyerEmail
	if cfg.toMerchant {
		to = s.MerchantEmail
	}
	if to == "" {
		return models.Message{}, fmt.Errorf("no recipient for %s on order %s", kind, s.OrderID)
	}

	store := s.StoreName
	if store == "" {
		store = "our store"
	}

	data := templateData{
		ShortID:    ShortID(s.OrderID),
		StoreName:  store,
		BuyerEmail: s.BuyerEmail,
		Status:     s.Status,
		Total:      FormatAmount(s.TotalCents, s.Currency),
		Items:      s.Items,
	}

	var buf bytes.Buffer
	if err := b.templates[kind].Execute(&buf, data); err != nil {
		return models.Message{}, fmt.Errorf("template render failed: %w", err)
	}

	return models.Message{
		To:      to,
		From:    fmt.Sprintf("%s <%s>", store, b.fromAddress),
		Subject: fmt.Sprintf(cfg.subject, data.ShortID, store),
		HTML:    buf.String(),
	}, nil
}

// ShortID is the customer facing order reference.
func ShortID(orderID string) string {
	id := strings.ReplaceAll(orderID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

var currencySymbols = map[string]string{
	"brl": "R$",
	"usd": "$",
	"eur": "€",
}

// FormatAmount renders cents with two decimals and the currency symbol.
func FormatAmount(cents int64, currency string) string {
	amount := money.FromCents(cents).StringFixed(2)
	if sym, ok := currencySymbols[strings.ToLower(currency)]; ok {
		return sym + " " + amount
	}
	if currency == "" {
		return amount
	}
	return strings.ToUpper(currency) + " " + amount
}
