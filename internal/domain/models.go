package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DiagnosisStatus represents the lifecycle status of a diagnosis request
type DiagnosisStatus string

const (
	// DiagnosisStatusDesignated means a specific partner was pre-assigned
	// and open bidding is bypassed
	DiagnosisStatusDesignated DiagnosisStatus = "DESIGNATED"
	DiagnosisStatusRecruiting DiagnosisStatus = "RECRUITING"
	DiagnosisStatusComparing  DiagnosisStatus = "COMPARING"
	DiagnosisStatusDecided    DiagnosisStatus = "DECIDED"
	DiagnosisStatusCancelled  DiagnosisStatus = "CANCELLED"
)

// IsValid checks if the DiagnosisStatus is a valid enum value
func (s DiagnosisStatus) IsValid() bool {
	switch s {
	case DiagnosisStatusDesignated, DiagnosisStatusRecruiting, DiagnosisStatusComparing,
		DiagnosisStatusDecided, DiagnosisStatusCancelled:
		return true
	}
	return false
}

// IsClosed reports whether the diagnosis has reached a terminal state.
// Closed diagnoses never reappear in any partner's eligible queue.
func (s DiagnosisStatus) IsClosed() bool {
	return s == DiagnosisStatusDecided || s == DiagnosisStatusCancelled
}

// Customer is the end customer requesting exterior painting work
type Customer struct {
	ID                  int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerName        string    `gorm:"type:varchar(200);not null;column:customer_name" json:"customerName"`
	CustomerEmail       *string   `gorm:"type:varchar(255);column:customer_email" json:"customerEmail,omitempty"`
	CustomerPhone       string    `gorm:"type:varchar(50);not null;column:customer_phone" json:"customerPhone"`
	ConstructionAddress string    `gorm:"type:varchar(500);column:construction_address" json:"constructionAddress,omitempty"`
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// DiagnosisRequest is a customer's inbound request for painting work.
// The diagnosis number is sequential, human readable and assigned exactly
// once at creation (GH00001, GH00002, ...). Numbers are never reused, even
// when the request is later cancelled.
type DiagnosisRequest struct {
	ID                  int             `gorm:"primaryKey;autoIncrement" json:"id"`
	DiagnosisNumber     string          `gorm:"type:varchar(20);not null;uniqueIndex;column:diagnosis_number" json:"diagnosisNumber"`
	CustomerID          int             `gorm:"not null;index;column:customer_id" json:"customerId"`
	Customer            *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Prefecture          string          `gorm:"type:varchar(50);not null;index" json:"prefecture"`
	FloorArea           string          `gorm:"type:varchar(50);column:floor_area" json:"floorArea,omitempty"`
	CurrentSituation    string          `gorm:"type:varchar(100);column:current_situation" json:"currentSituation,omitempty"`
	ConstructionType    string          `gorm:"type:varchar(100);column:construction_type" json:"constructionType,omitempty"`
	Status              DiagnosisStatus `gorm:"type:varchar(20);not null;default:'RECRUITING';index" json:"status"`
	DesignatedPartnerID *int            `gorm:"column:designated_partner_id;index" json:"designatedPartnerId,omitempty"`
	DesignatedPartner   *Partner        `gorm:"foreignKey:DesignatedPartnerID" json:"designatedPartner,omitempty"`
	ReferralFee         int             `gorm:"not null;default:30000;column:referral_fee" json:"referralFee"`
	AdminNote           string          `gorm:"type:text;column:admin_note" json:"adminNote,omitempty"`
	Quotations          []Quotation     `gorm:"foreignKey:DiagnosisRequestID" json:"quotations,omitempty"`
	CreatedAt           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"createdAt"`
	UpdatedAt           time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// Quotation is a partner's bid against a diagnosis request.
// At most one quotation per diagnosis carries is_selected=true; the Decide
// operation enforces this with a clear-then-set inside a single transaction.
type Quotation struct {
	ID                 int               `gorm:"primaryKey;autoIncrement" json:"id"`
	DiagnosisRequestID int               `gorm:"not null;uniqueIndex:idx_quotations_diagnosis_partner;column:diagnosis_request_id" json:"diagnosisRequestId"`
	DiagnosisRequest   *DiagnosisRequest `gorm:"foreignKey:DiagnosisRequestID" json:"diagnosisRequest,omitempty"`
	PartnerID          int               `gorm:"not null;uniqueIndex:idx_quotations_diagnosis_partner;column:partner_id" json:"partnerId"`
	Partner            *Partner          `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	QuotationAmount    int               `gorm:"not null;column:quotation_amount" json:"quotationAmount"`
	AppealText         string            `gorm:"type:text;column:appeal_text" json:"appealText,omitempty"`
	IsSelected         bool              `gorm:"not null;default:false;column:is_selected" json:"isSelected"`
	Order              *Order            `gorm:"foreignKey:QuotationID" json:"order,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// OrderStatus represents the operational status of a placed order
type OrderStatus string

const (
	OrderStatusOrdered    OrderStatus = "ORDERED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid checks if the OrderStatus is a valid enum value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusOrdered, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the binding engagement created from the winning quotation.
// Exactly one order exists per decided quotation; it is only ever created
// inside the Decide transaction.
type Order struct {
	ID                    int              `gorm:"primaryKey;autoIncrement" json:"id"`
	QuotationID           int              `gorm:"not null;uniqueIndex;column:quotation_id" json:"quotationId"`
	Quotation             *Quotation       `gorm:"foreignKey:QuotationID" json:"quotation,omitempty"`
	OrderStatus           OrderStatus      `gorm:"type:varchar(20);not null;default:'ORDERED';column:order_status;index" json:"orderStatus"`
	ConstructionAmount    *int             `gorm:"column:construction_amount" json:"constructionAmount,omitempty"`
	ConstructionStartDate *time.Time       `gorm:"type:date;column:construction_start_date" json:"constructionStartDate,omitempty"`
	ConstructionEndDate   *time.Time       `gorm:"type:date;column:construction_end_date" json:"constructionEndDate,omitempty"`
	CompletionDate        *time.Time       `gorm:"column:completion_date" json:"completionDate,omitempty"`
	PartnerMemo           string           `gorm:"type:text;column:partner_memo" json:"partnerMemo,omitempty"`
	Photos                []OrderPhoto     `gorm:"foreignKey:OrderID" json:"photos,omitempty"`
	CustomerInvoice       *CustomerInvoice `gorm:"foreignKey:OrderID" json:"customerInvoice,omitempty"`
	CreatedAt             time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt             time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// OrderPhoto is a construction photo attached to an order
type OrderPhoto struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int       `gorm:"not null;index;column:order_id" json:"orderId"`
	StoragePath string    `gorm:"type:varchar(500);not null;column:storage_path" json:"storagePath"`
	ContentType string    `gorm:"type:varchar(100);column:content_type" json:"contentType,omitempty"`
	Caption     string    `gorm:"type:varchar(500)" json:"caption,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// Partner is an affiliated contractor company
type Partner struct {
	ID             int                 `gorm:"primaryKey;autoIncrement" json:"id"`
	LoginEmail     string              `gorm:"type:varchar(255);not null;uniqueIndex;column:login_email" json:"loginEmail"`
	PasswordHash   string              `gorm:"type:varchar(255);not null;column:password_hash" json:"-"`
	IsActive       bool                `gorm:"not null;default:true;column:is_active" json:"isActive"`
	DepositBalance int                 `gorm:"not null;default:0;column:deposit_balance" json:"depositBalance"`
	FeePlanID      *int                `gorm:"column:fee_plan_id" json:"feePlanId,omitempty"`
	FeePlan        *FeePlan            `gorm:"foreignKey:FeePlanID" json:"feePlan,omitempty"`
	Details        *PartnerDetails     `gorm:"foreignKey:PartnerID" json:"details,omitempty"`
	Prefectures    []PartnerPrefecture `gorm:"foreignKey:PartnerID" json:"prefectures,omitempty"`
	CreatedAt      time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// PartnerDetails holds the partner's public company profile and bank fields
type PartnerDetails struct {
	ID                 int       `gorm:"primaryKey;autoIncrement" json:"id"`
	PartnerID          int       `gorm:"not null;uniqueIndex;column:partner_id" json:"partnerId"`
	CompanyName        string    `gorm:"type:varchar(200);not null;column:company_name" json:"companyName"`
	RepresentativeName string    `gorm:"type:varchar(100);column:representative_name" json:"representativeName,omitempty"`
	Phone              string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Address            string    `gorm:"type:varchar(500)" json:"address,omitempty"`
	WebsiteURL         string    `gorm:"type:varchar(500);column:website_url" json:"websiteUrl,omitempty"`
	BusinessHours      string    `gorm:"type:varchar(200);column:business_hours" json:"businessHours,omitempty"`
	AppealText         string    `gorm:"type:text;column:appeal_text" json:"appealText,omitempty"`
	BankName           string    `gorm:"type:varchar(100);column:bank_name" json:"bankName,omitempty"`
	BankBranchName     string    `gorm:"type:varchar(100);column:bank_branch_name" json:"bankBranchName,omitempty"`
	BankAccountType    string    `gorm:"type:varchar(20);column:bank_account_type" json:"bankAccountType,omitempty"`
	BankAccountNumber  string    `gorm:"type:varchar(20);column:bank_account_number" json:"bankAccountNumber,omitempty"`
	BankAccountHolder  string    `gorm:"type:varchar(100);column:bank_account_holder" json:"bankAccountHolder,omitempty"`
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// PartnerPrefecture is one row of a partner's geographic coverage relation
type PartnerPrefecture struct {
	ID                  int    `gorm:"primaryKey;autoIncrement" json:"id"`
	PartnerID           int    `gorm:"not null;uniqueIndex:idx_partner_prefecture;column:partner_id" json:"partnerId"`
	SupportedPrefecture string `gorm:"type:varchar(50);not null;uniqueIndex:idx_partner_prefecture;column:supported_prefecture" json:"supportedPrefecture"`
}

// ApplicationStatus represents the review status of a partner application
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// PartnerApplication is a contractor's request to join the platform.
// Approval creates the Partner record together with its coverage rows.
type PartnerApplication struct {
	ID                  int               `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyName         string            `gorm:"type:varchar(200);not null;column:company_name" json:"companyName"`
	RepresentativeName  string            `gorm:"type:varchar(100);column:representative_name" json:"representativeName,omitempty"`
	Email               string            `gorm:"type:varchar(255);not null" json:"email"`
	Phone               string            `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Address             string            `gorm:"type:varchar(500)" json:"address,omitempty"`
	WebsiteURL          string            `gorm:"type:varchar(500);column:website_url" json:"websiteUrl,omitempty"`
	BusinessDescription string            `gorm:"type:text;column:business_description" json:"businessDescription,omitempty"`
	SelfPR              string            `gorm:"type:text;column:self_pr" json:"selfPr,omitempty"`
	Prefectures         pq.StringArray    `gorm:"type:text[]" json:"prefectures"`
	Status              ApplicationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	AdminMemo           string            `gorm:"type:text;column:admin_memo" json:"adminMemo,omitempty"`
	ReviewedAt          *time.Time        `gorm:"column:reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt           time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// FeePlan is a named set of charge rates applied to a partner's billing.
// Every charge component is independently optional; a nil component
// contributes zero to the computed fee. At most one plan system-wide may
// carry is_default=true at any committed instant.
type FeePlan struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name"`
	MonthlyFee     *int      `gorm:"column:monthly_fee" json:"monthlyFee,omitempty"`
	PerOrderFee    *int      `gorm:"column:per_order_fee" json:"perOrderFee,omitempty"`
	PerProjectFee  *int      `gorm:"column:per_project_fee" json:"perProjectFee,omitempty"`
	ProjectFeeRate *float64  `gorm:"column:project_fee_rate" json:"projectFeeRate,omitempty"`
	IsDefault      bool      `gorm:"not null;default:false;column:is_default" json:"isDefault"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// InvoiceStatus is shared by company invoices (operator bills partner) and
// customer invoices (partner bills the end customer).
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusUnpaid    InvoiceStatus = "UNPAID"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the InvoiceStatus is a valid enum value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusUnpaid, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a status change is allowed.
// PAID is terminal and absorbing: no transition out of it is accepted,
// not even PAID -> PAID.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	if !target.IsValid() {
		return false
	}
	return s != InvoiceStatusPaid
}

// CompanyInvoice is the operator-to-partner bill for platform fees
type CompanyInvoice struct {
	ID                 int                  `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceNumber      string               `gorm:"type:varchar(30);not null;uniqueIndex;column:invoice_number" json:"invoiceNumber"`
	PartnerID          int                  `gorm:"not null;index;column:partner_id" json:"partnerId"`
	Partner            *Partner             `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	BillingPeriodStart time.Time            `gorm:"not null;column:billing_period_start" json:"billingPeriodStart"`
	BillingPeriodEnd   time.Time            `gorm:"not null;column:billing_period_end" json:"billingPeriodEnd"`
	IssueDate          *time.Time           `gorm:"column:issue_date" json:"issueDate,omitempty"`
	DueDate            *time.Time           `gorm:"column:due_date" json:"dueDate,omitempty"`
	PaymentDate        *time.Time           `gorm:"column:payment_date" json:"paymentDate,omitempty"`
	TotalAmount        int                  `gorm:"not null;column:total_amount" json:"totalAmount"`
	TaxAmount          int                  `gorm:"not null;column:tax_amount" json:"taxAmount"`
	GrandTotal         int                  `gorm:"not null;column:grand_total" json:"grandTotal"`
	Status             InvoiceStatus        `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Items              []CompanyInvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt          time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt          time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// CompanyInvoiceItem is one fee line on a company invoice
type CompanyInvoiceItem struct {
	ID             int    `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID      int    `gorm:"not null;index;column:invoice_id" json:"invoiceId"`
	Description    string `gorm:"type:varchar(200);not null" json:"description"`
	Amount         int    `gorm:"not null" json:"amount"`
	RelatedOrderID *int   `gorm:"column:related_order_id" json:"relatedOrderId,omitempty"`
}

// CustomerInvoice is the partner-to-customer bill for completed work.
// It is reachable only through Order -> Quotation -> Partner, which is the
// authorization boundary for partner-side status transitions.
type CustomerInvoice struct {
	ID            int           `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceNumber string        `gorm:"type:varchar(30);not null;uniqueIndex;column:invoice_number" json:"invoiceNumber"`
	OrderID       int           `gorm:"not null;uniqueIndex;column:order_id" json:"orderId"`
	Order         *Order        `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	IssueDate     *time.Time    `gorm:"column:issue_date" json:"issueDate,omitempty"`
	DueDate       *time.Time    `gorm:"column:due_date" json:"dueDate,omitempty"`
	PaymentDate   *time.Time    `gorm:"column:payment_date" json:"paymentDate,omitempty"`
	TotalAmount   int           `gorm:"not null;column:total_amount" json:"totalAmount"`
	TaxAmount     int           `gorm:"not null;column:tax_amount" json:"taxAmount"`
	GrandTotal    int           `gorm:"not null;column:grand_total" json:"grandTotal"`
	Status        InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// DepositRequestStatus represents the review status of a deposit request
type DepositRequestStatus string

const (
	DepositRequestPending  DepositRequestStatus = "PENDING"
	DepositRequestApproved DepositRequestStatus = "APPROVED"
	DepositRequestRejected DepositRequestStatus = "REJECTED"
)

// DepositRequest is a partner's request to top up its deposit balance
type DepositRequest struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PartnerID       int                  `gorm:"not null;index;column:partner_id" json:"partnerId"`
	Partner         *Partner             `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	RequestedAmount int                  `gorm:"not null;column:requested_amount" json:"requestedAmount"`
	ApprovedAmount  *int                 `gorm:"column:approved_amount" json:"approvedAmount,omitempty"`
	Status          DepositRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PartnerNote     string               `gorm:"type:text;column:partner_note" json:"partnerNote,omitempty"`
	AdminNote       string               `gorm:"type:text;column:admin_note" json:"adminNote,omitempty"`
	ApprovedAt      *time.Time           `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	CreatedAt       time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// DepositEntryType classifies a deposit ledger movement
type DepositEntryType string

const (
	DepositEntryDeposit   DepositEntryType = "DEPOSIT"
	DepositEntryDeduction DepositEntryType = "DEDUCTION"
)

// DepositHistory is one movement on a partner's deposit ledger.
// Amount is signed; Balance is the running balance after the movement.
type DepositHistory struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PartnerID   int              `gorm:"not null;index;column:partner_id" json:"partnerId"`
	Amount      int              `gorm:"not null" json:"amount"`
	Type        DepositEntryType `gorm:"type:varchar(20);not null" json:"type"`
	Balance     int              `gorm:"not null" json:"balance"`
	Description string           `gorm:"type:varchar(500)" json:"description,omitempty"`
	DiagnosisID *int             `gorm:"column:diagnosis_id" json:"diagnosisId,omitempty"`
	CreatedAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// Referral records that a diagnosis was introduced to a partner against a
// referral fee deducted from the partner's deposit balance.
type Referral struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DiagnosisID int               `gorm:"not null;uniqueIndex:idx_referral_diagnosis_partner;column:diagnosis_id" json:"diagnosisId"`
	Diagnosis   *DiagnosisRequest `gorm:"foreignKey:DiagnosisID" json:"diagnosis,omitempty"`
	PartnerID   int               `gorm:"not null;uniqueIndex:idx_referral_diagnosis_partner;column:partner_id" json:"partnerId"`
	Partner     *Partner          `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	ReferralFee int               `gorm:"not null;column:referral_fee" json:"referralFee"`
	EmailSent   bool              `gorm:"not null;default:false;column:email_sent" json:"emailSent"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// Article is a curated content entry kept in a dense manual display order
type Article struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title          string    `gorm:"type:varchar(300);not null" json:"title"`
	Category       string    `gorm:"type:varchar(100)" json:"category,omitempty"`
	Content        string    `gorm:"type:text" json:"content,omitempty"`
	ThumbnailImage *string   `gorm:"type:varchar(500);column:thumbnail_image" json:"thumbnailImage,omitempty"`
	IsPublished    bool      `gorm:"not null;default:false;column:is_published" json:"isPublished"`
	SortOrder      int       `gorm:"not null;uniqueIndex;column:sort_order" json:"sortOrder"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// Admin is a platform operator account
type Admin struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null;column:password_hash" json:"-"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// Sequence is a monotonic counter row. Allocation locks the row
// (SELECT ... FOR UPDATE) so concurrent callers can never mint the same
// value. Scope separates the diagnosis counter from invoice counters;
// Period holds the year or year-month for counters that reset.
type Sequence struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Scope     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_sequences_scope_period" json:"scope"`
	Period    string    `gorm:"type:varchar(10);not null;default:'';uniqueIndex:idx_sequences_scope_period" json:"period"`
	LastValue int       `gorm:"not null;column:last_value" json:"lastValue"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// SystemSettings is the singleton row of platform-wide billing settings
type SystemSettings struct {
	ID                     int       `gorm:"primaryKey;autoIncrement" json:"id"`
	TaxRate                float64   `gorm:"not null;default:0.1;column:tax_rate" json:"taxRate"`
	BillingCyclePaymentDay int       `gorm:"not null;default:20;column:billing_cycle_payment_day" json:"billingCyclePaymentDay"`
	DefaultReferralFee     int       `gorm:"not null;default:30000;column:default_referral_fee" json:"defaultReferralFee"`
	UpdatedAt              time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}
