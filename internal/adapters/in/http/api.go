package http

import (
	"time"

	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// Request and response bodies of the JSON API described in openapi.json.

type Error struct {
	Code          int    `json:"code"`
	Kind          string `json:"kind"`
	Message       string `json:"message"`
	CurrentStatus string `json:"currentStatus,omitempty"`
}

type NewOrderItem struct {
	ProductID string  `json:"productId"`
	DealID    *string `json:"dealId,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice string  `json:"unitPrice"`
}

type NewOrder struct {
	VendorID            string         `json:"vendorId"`
	CustomerID          string         `json:"customerId"`
	Items               []NewOrderItem `json:"items"`
	SpecialInstructions string         `json:"specialInstructions,omitempty"`
}

type PlacedOrder struct {
	ID                string   `json:"id"`
	Status            string   `json:"status"`
	Total             string   `json:"total"`
	ReservationTokens []string `json:"reservationTokens"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	DealID    *string `json:"dealId,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice string  `json:"unitPrice"`
	Subtotal  string  `json:"subtotal"`
}

type HistoryEntry struct {
	Status    string    `json:"status"`
	ActorRole string    `json:"actorRole"`
	ActorID   string    `json:"actorId"`
	At        time.Time `json:"at"`
}

type OrderSummary struct {
	ID         string  `json:"id"`
	VendorID   string  `json:"vendorId"`
	CustomerID string  `json:"customerId"`
	RiderID    *string `json:"riderId,omitempty"`
	Status     string  `json:"status"`
	Total      string  `json:"total"`
}

type OrderView struct {
	ID                  string         `json:"id"`
	VendorID            string         `json:"vendorId"`
	CustomerID          string         `json:"customerId"`
	RiderID             *string        `json:"riderId,omitempty"`
	ActiveRiderID       *string        `json:"activeRiderId,omitempty"`
	Status              string         `json:"status"`
	RejectionReason     *string        `json:"rejectionReason,omitempty"`
	SpecialInstructions string         `json:"specialInstructions,omitempty"`
	Total               string         `json:"total"`
	Items               []OrderItem    `json:"items"`
	History             []HistoryEntry `json:"history"`
	AssignmentCount     int            `json:"assignmentCount"`
}

type TransitionRequest struct {
	ActingRole   string `json:"actingRole"`
	ActingID     string `json:"actingId"`
	TargetStatus string `json:"targetStatus"`
	Reason       string `json:"reason,omitempty"`
}

type TransitionResult struct {
	From         string       `json:"from"`
	Status       string       `json:"status"`
	HistoryEntry HistoryEntry `json:"historyEntry"`
}

type AssignRequest struct {
	RiderID string `json:"riderId"`
}

type Assignment struct {
	AssignmentID string `json:"assignmentId"`
}

type NewDeal struct {
	ProductRef         string    `json:"productRef"`
	OriginalPrice      string    `json:"originalPrice"`
	DealPrice          string    `json:"dealPrice"`
	DiscountPercentage string    `json:"discountPercentage,omitempty"`
	DealType           string    `json:"dealType"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	MaxQuantity        int       `json:"maxQuantity"`
	Featured           bool      `json:"featured"`
	Category           string    `json:"category,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
}

type CreatedDeal struct {
	ID string `json:"id"`
}

type DealView struct {
	ID                 string    `json:"id"`
	ProductRef         string    `json:"productRef"`
	OriginalPrice      string    `json:"originalPrice"`
	DealPrice          string    `json:"dealPrice"`
	DiscountPercentage string    `json:"discountPercentage"`
	DealType           string    `json:"dealType"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	MaxQuantity        int       `json:"maxQuantity"`
	SoldQuantity       int       `json:"soldQuantity"`
	RemainingQuantity  int       `json:"remainingQuantity"`
	IsActive           bool      `json:"isActive"`
	IsExpired          bool      `json:"isExpired"`
	IsValid            bool      `json:"isValid"`
	Featured           bool      `json:"featured"`
	Category           string    `json:"category,omitempty"`
	Tags               []string  `json:"tags"`
	AsOf               time.Time `json:"asOf"`
}

type ReserveRequest struct {
	Quantity int `json:"quantity"`
}

type Reservation struct {
	ReservationToken string `json:"reservationToken"`
}

func optionalString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func historyEntryOf(entry order.HistoryEntry) HistoryEntry {
	return HistoryEntry{
		Status:    entry.Status.String(),
		ActorRole: entry.Actor.Role.String(),
		ActorID:   entry.Actor.ID.String(),
		At:        entry.At,
	}
}

func orderViewOf(r queries.GetOrderStatusQueryResponse) OrderView {
	items := make([]OrderItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, OrderItem{
			ProductID: item.ProductID().String(),
			DealID:    optionalString(item.DealID()),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().String(),
			Subtotal:  item.Subtotal().String(),
		})
	}
	history := make([]HistoryEntry, 0, len(r.History))
	for _, entry := range r.History {
		history = append(history, historyEntryOf(entry))
	}

	return OrderView{
		ID:                  r.ID.String(),
		VendorID:            r.VendorID.String(),
		CustomerID:          r.CustomerID.String(),
		RiderID:             optionalString(r.RiderID),
		ActiveRiderID:       optionalString(r.ActiveRiderID),
		Status:              r.Status.String(),
		RejectionReason:     r.RejectionReason,
		SpecialInstructions: r.SpecialInstructions,
		Total:               r.Total.String(),
		Items:               items,
		History:             history,
		AssignmentCount:     r.AssignmentCount,
	}
}

func dealViewOf(r queries.GetDealSnapshotQueryResponse) DealView {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return DealView{
		ID:                 r.ID,
		ProductRef:         r.ProductRef,
		OriginalPrice:      r.OriginalPrice,
		DealPrice:          r.DealPrice,
		DiscountPercentage: r.DiscountPercentage,
		DealType:           r.Type,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		MaxQuantity:        r.MaxQuantity,
		SoldQuantity:       r.SoldQuantity,
		RemainingQuantity:  r.RemainingQuantity,
		IsActive:           r.IsActive,
		IsExpired:          r.IsExpired,
		IsValid:            r.IsValid,
		Featured:           r.Featured,
		Category:           r.Category,
		Tags:               tags,
		AsOf:               r.AsOf,
	}
}
