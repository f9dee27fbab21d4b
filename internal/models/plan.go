package models

type PlanTier string

const (
	PlanFree  PlanTier = "free"
	PlanBasic PlanTier = "basic"
	PlanPro   PlanTier = "pro"
)

type PlanInfo struct {
	Plan                PlanTier `json:"plan"`
	TokensLimit         int64    `json:"tokens_limit"`
	PDFUploadsPerDay    int      `json:"pdf_uploads_per_day"`
	ImagesPerDay        int      `json:"images_per_day"`
	TokensUsedToday     int64    `json:"tokens_used_today"`
	PDFUploadsToday     int      `json:"pdf_uploads_today"`
	ImagesUploadedToday int      `json:"images_uploaded_today"`
	TokensRemaining     int64    `json:"tokens_remaining"`
	PricePerMonth       *float64 `json:"price_per_month"`
}

type PlanChangeRequest struct {
	Plan PlanTier `json:"plan"`
}
