// Package pdf renders a contract snapshot into the downloadable agreement
// document. It consumes read-only data only; nothing here feeds back into the
// contract lifecycle.
package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"contractflow/contract"
)

const liabilityClauses = `Responsibilities:
- The Supplier undertakes to provide articles whose quality matches their descriptions.
- The Reseller undertakes to represent the articles faithfully in its online store.
- In case of dispute, both parties undertake to seek an amicable resolution.
- The Supplier is responsible for manufacturing defects.
- The Reseller is responsible for communication with customers.`

type renderer struct {
	doc   *gofpdf.Fpdf
	pageW float64
	pageH float64
}

// Render produces the contract PDF: title block with status and date, both
// parties' details and identity photos, the seven contract articles, location
// and date, both confirmation checkboxes, and the finalization date when the
// contract is final. Non-final snapshots render as previews.
func Render(c contract.Contract) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Online Sales Contract", true)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	pageW, pageH := doc.GetPageSize()
	r := &renderer{doc: doc, pageW: pageW, pageH: pageH}

	// Header rule.
	doc.SetDrawColor(200, 170, 50)
	doc.SetLineWidth(0.8)
	doc.Line(14, 12, pageW-14, 12)
	doc.SetY(18)

	r.title("ONLINE SALES CONTRACT")

	statusLabel := strings.ToUpper(string(contract.DisplayStatus(c)))
	doc.SetFont("Helvetica", "I", 9)
	doc.SetTextColor(120, 120, 120)
	doc.CellFormat(0, 5, fmt.Sprintf("Status: %s  |  Date: %s", statusLabel, c.EffectiveDate), "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "B", 8)
	doc.SetTextColor(40, 120, 70)
	doc.CellFormat(0, 5, "Identity verified by automated document check", "", 1, "C", false, 0, "")
	doc.Ln(4)

	r.subtitle("SUPPLIER INFORMATION")
	r.field("Full name", c.Supplier.FullName)
	r.field("National ID", c.Supplier.NationalID)
	r.field("Address", c.Supplier.Address)
	r.field("Phone", c.Supplier.Phone)
	r.idPhotos("supplier", c.Supplier.Photos)

	r.subtitle("RESELLER INFORMATION")
	r.field("Full name", c.Reseller.FullName)
	r.field("National ID", c.Reseller.NationalID)
	r.field("Address", c.Reseller.Address)
	r.field("Phone", c.Reseller.Phone)
	r.field("Store / page", c.Reseller.StoreName)
	r.idPhotos("reseller", c.Reseller.Photos)

	r.subtitle("Article 1: Purpose")
	r.text("This contract covers the online sale of articles made by the Supplier through the Reseller's virtual store.")

	r.subtitle("Article 2: Products covered")
	r.text(productList(c.Products))

	r.subtitle("Article 3: Pricing and earnings")
	if c.Pricing.Mode == contract.PricingMarkup {
		r.text("The Supplier sets a base price and the Reseller adds its own markup.")
	} else {
		r.text(fmt.Sprintf("The Reseller receives a commission of %d%%.", c.Pricing.CommissionPercent))
	}

	r.subtitle("Article 4: Payment terms")
	r.text("Mobile money: " + paymentList(c.Payment))
	r.text("- A 50% deposit is paid within 3 days before delivery")
	r.text("- The balance is paid on the day of delivery")

	r.subtitle("Article 5: Delivery")
	r.text("Delivery handled by: " + actorLabel(c.Delivery.HandledBy))
	r.text("Delivery cost paid by: " + bearerLabel(c.Delivery.CostPaidBy))

	r.subtitle("Article 6: Responsibilities")
	r.text(liabilityClauses)

	r.subtitle("Article 7: Duration")
	r.text("This contract is valid for 12 months from its finalization date.")

	r.subtitle("Place and date")
	r.field("Place", c.Location)
	r.field("Date", c.EffectiveDate)

	r.subtitle("Confirmations")
	r.text(checkbox(c.SupplierConfirmed) + " The Supplier confirms and approves the information")
	r.text(checkbox(c.ResellerConfirmed) + " The Reseller confirms and approves the information")
	if c.FinalizedAt != nil {
		r.field("Finalized on", c.FinalizedAt.Format("2006-01-02 15:04 MST"))
	}

	// Footer rule.
	doc.SetDrawColor(200, 170, 50)
	doc.SetLineWidth(0.4)
	doc.Line(14, r.pageH-15, pageW-14, r.pageH-15)
	doc.SetFont("Helvetica", "", 7)
	doc.SetTextColor(150, 150, 150)
	doc.Text(pageW/2-45, r.pageH-10, "Automatically generated document - online sales contract - identity verified")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render contract: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *renderer) title(text string) {
	r.doc.SetFont("Helvetica", "B", 18)
	r.doc.SetTextColor(30, 48, 80)
	r.doc.CellFormat(0, 10, text, "", 1, "C", false, 0, "")
}

func (r *renderer) subtitle(text string) {
	r.doc.Ln(3)
	r.doc.SetFont("Helvetica", "B", 12)
	r.doc.SetTextColor(30, 48, 80)
	r.doc.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
}

func (r *renderer) text(text string) {
	r.doc.SetFont("Helvetica", "", 10)
	r.doc.SetTextColor(50, 50, 50)
	r.doc.MultiCell(0, 5, text, "", "L", false)
}

func (r *renderer) field(label, value string) {
	r.doc.SetFont("Helvetica", "B", 10)
	r.doc.SetTextColor(30, 48, 80)
	r.doc.CellFormat(52, 6, label+":", "", 0, "L", false, 0, "")
	r.doc.SetFont("Helvetica", "", 10)
	r.doc.SetTextColor(50, 50, 50)
	if value == "" {
		value = "-"
	}
	r.doc.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

// idPhotos lays out the front/back card images side by side. Payloads that do
// not decode as images are skipped rather than failing the whole document.
func (r *renderer) idPhotos(owner string, photos contract.IdentityPhotos) {
	const imgW, imgH = 40.0, 28.0

	slots := []struct {
		label   string
		payload string
	}{
		{"Front", photos.Front.Payload},
		{"Back", photos.Back.Payload},
	}

	placed := false
	x := 18.0
	for _, s := range slots {
		if s.payload == "" {
			continue
		}
		imgType, raw, ok := decodePhoto(s.payload)
		if !ok {
			continue
		}
		if !placed {
			if r.doc.GetY() > r.pageH-60 {
				r.doc.AddPage()
			}
			placed = true
		}
		name := owner + "-" + strings.ToLower(s.label)
		opts := gofpdf.ImageOptions{ImageType: imgType}
		r.doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
		y := r.doc.GetY()
		r.doc.ImageOptions(name, x, y, imgW, imgH, false, opts, 0, "")
		r.doc.SetFont("Helvetica", "", 7)
		r.doc.SetTextColor(120, 120, 120)
		r.doc.Text(x, y+imgH+3, s.label)
		x += imgW + 10
	}
	if placed {
		r.doc.SetY(r.doc.GetY() + imgH + 8)
	} else {
		r.doc.Ln(2)
	}
}

// decodePhoto strips an optional data-URI prefix, base64-decodes the payload
// and confirms it is a JPEG or PNG image.
func decodePhoto(payload string) (imgType string, raw []byte, ok bool) {
	data := payload
	if strings.HasPrefix(data, "data:") {
		idx := strings.Index(data, "base64,")
		if idx < 0 {
			return "", nil, false
		}
		data = data[idx+len("base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", nil, false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", nil, false
	}
	switch format {
	case "jpeg":
		return "JPEG", raw, true
	case "png":
		return "PNG", raw, true
	default:
		return "", nil, false
	}
}

func productList(p contract.ProductSelection) string {
	var items []string
	if p.Dresses {
		items = append(items, "Dresses")
	}
	if p.Skirts {
		items = append(items, "Skirts")
	}
	if p.Shirts {
		items = append(items, "Shirts")
	}
	if p.Outfits {
		items = append(items, "Outfits")
	}
	if p.Other {
		items = append(items, "Other: "+p.OtherDetail)
	}
	if len(items) == 0 {
		return "No products selected"
	}
	return strings.Join(items, ", ")
}

func paymentList(p contract.PaymentMethods) string {
	var items []string
	if p.MVola {
		items = append(items, "MVola")
	}
	if p.OrangeMoney {
		items = append(items, "Orange Money")
	}
	if p.AirtelMoney {
		items = append(items, "Airtel Money")
	}
	if len(items) == 0 {
		return "Not specified"
	}
	return strings.Join(items, ", ")
}

func actorLabel(a contract.DeliveryActor) string {
	if a == contract.DeliveryByReseller {
		return "Reseller"
	}
	return "Supplier"
}

func bearerLabel(b contract.CostBearer) string {
	switch b {
	case contract.CostPaidByReseller:
		return "Reseller"
	case contract.CostPaidBySupplier:
		return "Supplier"
	default:
		return "Customer"
	}
}

func checkbox(checked bool) string {
	if checked {
		return "[X]"
	}
	return "[ ]"
}
