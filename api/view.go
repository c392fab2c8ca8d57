package api

import (
	"time"

	"contractflow/contract"
)

// The domain structs carry no JSON annotations, so the API shapes its own
// views. Photo payloads are redacted to presence flags: raw images leave the
// service only through the PDF export.

type slotView struct {
	Uploaded bool   `json:"uploaded"`
	State    string `json:"state"`
	Reason   string `json:"reason,omitempty"`
}

type photosView struct {
	Front slotView `json:"front"`
	Back  slotView `json:"back"`
}

type partyView struct {
	FullName   string     `json:"full_name"`
	NationalID string     `json:"national_id"`
	Address    string     `json:"address"`
	Phone      string     `json:"phone"`
	StoreName  string     `json:"store_name,omitempty"`
	Photos     photosView `json:"photos"`
}

type contractView struct {
	ID                string       `json:"id"`
	Status            string       `json:"status"`
	DisplayStatus     string       `json:"display_status"`
	Supplier          partyView    `json:"supplier"`
	Reseller          partyView    `json:"reseller"`
	Products          productsView `json:"products"`
	Pricing           pricingView  `json:"pricing"`
	Payment           paymentView  `json:"payment"`
	Delivery          deliveryView `json:"delivery"`
	Location          string       `json:"location"`
	EffectiveDate     string       `json:"effective_date"`
	CreatedAt         time.Time    `json:"created_at"`
	FinalizedAt       *time.Time   `json:"finalized_at,omitempty"`
	SupplierConfirmed bool         `json:"supplier_confirmed"`
	ResellerConfirmed bool         `json:"reseller_confirmed"`
	AllFieldsComplete bool         `json:"all_fields_complete"`
	IdentityVerified  bool         `json:"identity_verified"`
	CanFinalize       bool         `json:"can_finalize"`
}

type productsView struct {
	Dresses     bool   `json:"dresses"`
	Skirts      bool   `json:"skirts"`
	Shirts      bool   `json:"shirts"`
	Outfits     bool   `json:"outfits"`
	Other       bool   `json:"other"`
	OtherDetail string `json:"other_detail,omitempty"`
}

func (v productsView) model() contract.ProductSelection {
	return contract.ProductSelection{
		Dresses:     v.Dresses,
		Skirts:      v.Skirts,
		Shirts:      v.Shirts,
		Outfits:     v.Outfits,
		Other:       v.Other,
		OtherDetail: v.OtherDetail,
	}
}

type paymentView struct {
	MVola       bool `json:"mvola"`
	OrangeMoney bool `json:"orange_money"`
	AirtelMoney bool `json:"airtel_money"`
}

func (v paymentView) model() contract.PaymentMethods {
	return contract.PaymentMethods{
		MVola:       v.MVola,
		OrangeMoney: v.OrangeMoney,
		AirtelMoney: v.AirtelMoney,
	}
}

type pricingView struct {
	Mode              string `json:"mode"`
	CommissionPercent int    `json:"commission_percent"`
}

type deliveryView struct {
	HandledBy  string `json:"handled_by"`
	CostPaidBy string `json:"cost_paid_by"`
}

func viewOf(c contract.Contract) contractView {
	return contractView{
		ID:            c.ID,
		Status:        string(c.Status),
		DisplayStatus: string(contract.DisplayStatus(c)),
		Supplier:      partyViewOf(c.Supplier, ""),
		Reseller:      partyViewOf(c.Reseller.Party, c.Reseller.StoreName),
		Products: productsView{
			Dresses:     c.Products.Dresses,
			Skirts:      c.Products.Skirts,
			Shirts:      c.Products.Shirts,
			Outfits:     c.Products.Outfits,
			Other:       c.Products.Other,
			OtherDetail: c.Products.OtherDetail,
		},
		Pricing: pricingView{
			Mode:              string(c.Pricing.Mode),
			CommissionPercent: c.Pricing.CommissionPercent,
		},
		Payment: paymentView{
			MVola:       c.Payment.MVola,
			OrangeMoney: c.Payment.OrangeMoney,
			AirtelMoney: c.Payment.AirtelMoney,
		},
		Delivery: deliveryView{
			HandledBy:  string(c.Delivery.HandledBy),
			CostPaidBy: string(c.Delivery.CostPaidBy),
		},
		Location:          c.Location,
		EffectiveDate:     c.EffectiveDate,
		CreatedAt:         c.CreatedAt,
		FinalizedAt:       c.FinalizedAt,
		SupplierConfirmed: c.SupplierConfirmed,
		ResellerConfirmed: c.ResellerConfirmed,
		AllFieldsComplete: contract.AllFieldsComplete(c),
		IdentityVerified: contract.IdentityVerified(c.Supplier.Photos) &&
			contract.IdentityVerified(c.Reseller.Photos),
		CanFinalize: contract.CanFinalize(c),
	}
}

func partyViewOf(p contract.Party, storeName string) partyView {
	return partyView{
		FullName:   p.FullName,
		NationalID: p.NationalID,
		Address:    p.Address,
		Phone:      p.Phone,
		StoreName:  storeName,
		Photos: photosView{
			Front: slotViewOf(p.Photos.Front),
			Back:  slotViewOf(p.Photos.Back),
		},
	}
}

func slotViewOf(s contract.PhotoSlot) slotView {
	return slotView{
		Uploaded: s.Payload != "",
		State:    string(s.State),
		Reason:   s.Reason,
	}
}
