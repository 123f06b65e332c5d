package salesync

import "encoding/json"

type DailySyncRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

type MonthlySyncRequest struct {
	StartMonth string `json:"startMonth" binding:"required"`
	EndMonth   string `json:"endMonth" binding:"required"`
}

type YearlySyncRequest struct {
	Year int `json:"year" binding:"required"`
}

type SyncRunResponse struct {
	ID          uint            `json:"id"`
	Kind        string          `json:"kind"`
	Status      string          `json:"status"`
	TriggeredBy string          `json:"triggeredBy"`
	RangeStart  string          `json:"rangeStart"`
	RangeEnd    string          `json:"rangeEnd"`
	StartedAt   *string         `json:"startedAt"`
	FinishedAt  *string         `json:"finishedAt"`
	DurationMs  int64           `json:"durationMs"`
	ErrorCount  int             `json:"errorCount"`
	Stats       json.RawMessage `json:"stats,omitempty"`
}

type SyncHistoryResponse struct {
	Items []SyncRunResponse `json:"items"`
}

type SyncRunDetailResponse struct {
	SyncRunResponse
	Errors []SyncItemErrorResponse `json:"errors"`
}

type SyncItemErrorResponse struct {
	ID         uint   `json:"id"`
	SaleCode   string `json:"saleCode"`
	ProductRef string `json:"productRef"`
	ItemSeq    int    `json:"itemSeq"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
}

type PubSubPushEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
		ID   string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type SyncPubSubPayload struct {
	RunId uint `json:"run_id"`
}
