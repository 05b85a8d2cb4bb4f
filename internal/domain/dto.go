package domain

import (
	"time"

	"github.com/google/uuid"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// CreateDiagnosisRequest is the inbound payload for registering a new
// diagnosis. The customer is created (or reused) together with the request.
type CreateDiagnosisRequest struct {
	CustomerName        string  `json:"customerName" validate:"required,max=200"`
	CustomerEmail       *string `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerPhone       string  `json:"customerPhone" validate:"required,max=50"`
	ConstructionAddress string  `json:"constructionAddress,omitempty" validate:"max=500"`
	Prefecture          string  `json:"prefecture" validate:"required,max=50"`
	FloorArea           string  `json:"floorArea,omitempty" validate:"max=50"`
	CurrentSituation    string  `json:"currentSituation,omitempty" validate:"max=100"`
	ConstructionType    string  `json:"constructionType,omitempty" validate:"max=100"`
	DesignatedPartnerID *int    `json:"designatedPartnerId,omitempty" validate:"omitempty,gt=0"`
	ReferralFee         *int    `json:"referralFee,omitempty" validate:"omitempty,gte=0"`
	AdminNote           string  `json:"adminNote,omitempty"`
}

// UpdateDiagnosisRequest carries the admin-editable diagnosis fields
type UpdateDiagnosisRequest struct {
	Prefecture       *string          `json:"prefecture,omitempty" validate:"omitempty,max=50"`
	FloorArea        *string          `json:"floorArea,omitempty" validate:"omitempty,max=50"`
	CurrentSituation *string          `json:"currentSituation,omitempty" validate:"omitempty,max=100"`
	ConstructionType *string          `json:"constructionType,omitempty" validate:"omitempty,max=100"`
	Status           *DiagnosisStatus `json:"status,omitempty"`
	ReferralFee      *int             `json:"referralFee,omitempty" validate:"omitempty,gte=0"`
	AdminNote        *string          `json:"adminNote,omitempty"`
}

// DecideRequest selects the winning quotation for a diagnosis
type DecideRequest struct {
	QuotationID int `json:"quotationId" validate:"required,gt=0"`
}

// SubmitQuotationRequest is a partner's bid payload
type SubmitQuotationRequest struct {
	DiagnosisRequestID int    `json:"diagnosisRequestId" validate:"required,gt=0"`
	QuotationAmount    int    `json:"quotationAmount" validate:"required,gt=0"`
	AppealText         string `json:"appealText,omitempty"`
}

// UpdateOrderRequest carries the partner-editable order fields
type UpdateOrderRequest struct {
	OrderStatus           *OrderStatus `json:"orderStatus,omitempty"`
	ConstructionAmount    *int         `json:"constructionAmount,omitempty" validate:"omitempty,gte=0"`
	ConstructionStartDate *string      `json:"constructionStartDate,omitempty"` // YYYY-MM-DD
	ConstructionEndDate   *string      `json:"constructionEndDate,omitempty"`   // YYYY-MM-DD
	PartnerMemo           *string      `json:"partnerMemo,omitempty"`
}

// SetInvoiceStatusRequest is the explicit status transition payload shared
// by company and customer invoices. PaymentDate is only meaningful when the
// target status is PAID; omitted means the current time.
type SetInvoiceStatusRequest struct {
	Status      InvoiceStatus `json:"status" validate:"required"`
	PaymentDate *time.Time    `json:"paymentDate,omitempty"`
}

// IssueInvoicesRequest selects the draft invoices to issue as a batch
type IssueInvoicesRequest struct {
	InvoiceIDs []int `json:"invoiceIds" validate:"required,min=1,dive,gt=0"`
}

// IssueInvoicesResponse reports how many invoices the batch actually issued
type IssueInvoicesResponse struct {
	Issued int `json:"issued"`
}

// CreateFeePlanRequest creates a fee plan; nil components charge nothing
type CreateFeePlanRequest struct {
	Name           string   `json:"name" validate:"required,max=100"`
	MonthlyFee     *int     `json:"monthlyFee,omitempty" validate:"omitempty,gte=0"`
	PerOrderFee    *int     `json:"perOrderFee,omitempty" validate:"omitempty,gte=0"`
	PerProjectFee  *int     `json:"perProjectFee,omitempty" validate:"omitempty,gte=0"`
	ProjectFeeRate *float64 `json:"projectFeeRate,omitempty" validate:"omitempty,gte=0,lte=1"`
	IsDefault      bool     `json:"isDefault"`
}

// UpdateFeePlanRequest updates a fee plan's charge components
type UpdateFeePlanRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	MonthlyFee     *int     `json:"monthlyFee,omitempty" validate:"omitempty,gte=0"`
	PerOrderFee    *int     `json:"perOrderFee,omitempty" validate:"omitempty,gte=0"`
	PerProjectFee  *int     `json:"perProjectFee,omitempty" validate:"omitempty,gte=0"`
	ProjectFeeRate *float64 `json:"projectFeeRate,omitempty" validate:"omitempty,gte=0,lte=1"`
	IsDefault      *bool    `json:"isDefault,omitempty"`
}

// AssignFeePlanRequest attaches a fee plan to a partner
type AssignFeePlanRequest struct {
	FeePlanID int `json:"feePlanId" validate:"required,gt=0"`
}

// MoveArticleRequest moves an article one position in the display order
type MoveArticleRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// CreateArticleRequest creates a curated content entry
type CreateArticleRequest struct {
	Title       string `json:"title" validate:"required,max=300"`
	Category    string `json:"category,omitempty" validate:"max=100"`
	Content     string `json:"content,omitempty"`
	IsPublished bool   `json:"isPublished"`
}

// UpdateArticleRequest updates a content entry
type UpdateArticleRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=300"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Content     *string `json:"content,omitempty"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// CreateDepositRequest is a partner's top-up request payload
type CreateDepositRequest struct {
	RequestedAmount int    `json:"requestedAmount" validate:"required,gt=0"`
	PartnerNote     string `json:"partnerNote,omitempty"`
}

// ReviewDepositRequest approves or rejects a pending deposit request
type ReviewDepositRequest struct {
	Approve        bool   `json:"approve"`
	ApprovedAmount *int   `json:"approvedAmount,omitempty" validate:"omitempty,gt=0"`
	AdminNote      string `json:"adminNote,omitempty"`
}

// CreateReferralRequest introduces a diagnosis to a partner
type CreateReferralRequest struct {
	DiagnosisID int `json:"diagnosisId" validate:"required,gt=0"`
	PartnerID   int `json:"partnerId" validate:"required,gt=0"`
}

// CreatePartnerApplicationRequest is the public signup payload
type CreatePartnerApplicationRequest struct {
	CompanyName         string   `json:"companyName" validate:"required,max=200"`
	RepresentativeName  string   `json:"representativeName,omitempty" validate:"max=100"`
	Email               string   `json:"email" validate:"required,email"`
	Phone               string   `json:"phone,omitempty" validate:"max=50"`
	Address             string   `json:"address,omitempty" validate:"max=500"`
	WebsiteURL          string   `json:"websiteUrl,omitempty" validate:"omitempty,url,max=500"`
	BusinessDescription string   `json:"businessDescription,omitempty"`
	SelfPR              string   `json:"selfPr,omitempty"`
	Prefectures         []string `json:"prefectures" validate:"required,min=1,dive,max=50"`
}

// ReviewApplicationRequest approves or rejects a partner application.
// Approval requires an initial password for the created partner account.
type ReviewApplicationRequest struct {
	Approve   bool   `json:"approve"`
	Password  string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	AdminMemo string `json:"adminMemo,omitempty"`
}

// UpdatePartnerProfileRequest carries the partner-editable profile fields
type UpdatePartnerProfileRequest struct {
	CompanyName        *string  `json:"companyName,omitempty" validate:"omitempty,max=200"`
	RepresentativeName *string  `json:"representativeName,omitempty" validate:"omitempty,max=100"`
	Phone              *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address            *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	WebsiteURL         *string  `json:"websiteUrl,omitempty" validate:"omitempty,max=500"`
	BusinessHours      *string  `json:"businessHours,omitempty" validate:"omitempty,max=200"`
	AppealText         *string  `json:"appealText,omitempty"`
	BankName           *string  `json:"bankName,omitempty" validate:"omitempty,max=100"`
	BankBranchName     *string  `json:"bankBranchName,omitempty" validate:"omitempty,max=100"`
	BankAccountType    *string  `json:"bankAccountType,omitempty" validate:"omitempty,oneof=ordinary checking"`
	BankAccountNumber  *string  `json:"bankAccountNumber,omitempty" validate:"omitempty,max=20"`
	BankAccountHolder  *string  `json:"bankAccountHolder,omitempty" validate:"omitempty,max=100"`
	Prefectures        []string `json:"prefectures,omitempty" validate:"omitempty,min=1,dive,max=50"`
}

// LoginRequest authenticates a partner or admin account
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"` // ISO 8601
}

// GenerateInvoicesRequest triggers company invoice generation for a month
type GenerateInvoicesRequest struct {
	Year  int `json:"year" validate:"required,gte=2020,lte=2100"`
	Month int `json:"month" validate:"required,gte=1,lte=12"`
}

// GenerateInvoicesResponse summarizes a batch generation run
type GenerateInvoicesResponse struct {
	Generated int   `json:"generated"`
	Skipped   int   `json:"skipped"`
	InvoiceID []int `json:"invoiceIds,omitempty"`
}

// EligibleDiagnosisDTO is one entry of a partner's eligible queue
type EligibleDiagnosisDTO struct {
	ID               int             `json:"id"`
	DiagnosisNumber  string          `json:"diagnosisNumber"`
	Prefecture       string          `json:"prefecture"`
	FloorArea        string          `json:"floorArea,omitempty"`
	CurrentSituation string          `json:"currentSituation,omitempty"`
	ConstructionType string          `json:"constructionType,omitempty"`
	Status           DiagnosisStatus `json:"status"`
	ReferralFee      int             `json:"referralFee"`
	IsDesignated     bool            `json:"isDesignated"`
	HasOwnQuotation  bool            `json:"hasOwnQuotation"`
	CreatedAt        string          `json:"createdAt"` // ISO 8601
}

// DepositSummaryDTO is a partner's current balance with recent movements
type DepositSummaryDTO struct {
	Balance int              `json:"balance"`
	History []DepositHistory `json:"history"`
}

// FeeBreakdown itemizes one partner's computed monthly platform fee
type FeeBreakdown struct {
	MonthlyFee    int `json:"monthlyFee"`
	OrderFees     int `json:"orderFees"`
	ProjectFees   int `json:"projectFees"`
	RateFees      int `json:"rateFees"`
	OrderCount    int `json:"orderCount"`
	ProjectCount  int `json:"projectCount"`
	ProjectAmount int `json:"projectAmount"`
	Total         int `json:"total"`
}

// UploadPhotoResponse returns the stored photo location
type UploadPhotoResponse struct {
	ID          int    `json:"id"`
	StoragePath string `json:"storagePath"`
}

// SystemSettingsRequest updates the platform billing settings
type SystemSettingsRequest struct {
	TaxRate                *float64 `json:"taxRate,omitempty" validate:"omitempty,gte=0,lte=1"`
	BillingCyclePaymentDay *int     `json:"billingCyclePaymentDay,omitempty" validate:"omitempty,gte=1,lte=28"`
	DefaultReferralFee     *int     `json:"defaultReferralFee,omitempty" validate:"omitempty,gte=0"`
}

// PaginatedResponse wraps list responses with paging metadata
type PaginatedResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

// ReferralDTO is the admin view of a referral with resolved names
type ReferralDTO struct {
	ID              uuid.UUID `json:"id"`
	DiagnosisID     int       `json:"diagnosisId"`
	DiagnosisNumber string    `json:"diagnosisNumber,omitempty"`
	PartnerID       int       `json:"partnerId"`
	PartnerName     string    `json:"partnerName,omitempty"`
	ReferralFee     int       `json:"referralFee"`
	EmailSent       bool      `json:"emailSent"`
	CreatedAt       string    `json:"createdAt"` // ISO 8601
}
