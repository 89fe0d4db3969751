package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/PaulPerea/paymentorder/internal/payment/domain"
)

// AuditStore writes one JSON object per audit record to an S3-compatible
// bucket, keyed by the audit's UTC calendar date.
type AuditStore struct {
	log    *slog.Logger
	client *minio.Client
	bucket string
}

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewAuditStore(log *slog.Logger, opts Options) (*AuditStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}
	return &AuditStore{log: log, client: client, bucket: opts.Bucket}, nil
}

// EnsureBucket creates the audit bucket when it does not exist yet.
func (s *AuditStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *AuditStore) Save(ctx context.Context, audit domain.AuditLog) error {
	payload, err := json.Marshal(toAuditDocument(audit))
	if err != nil {
		return fmt.Errorf("marshal audit %s: %w", audit.AuditID, err)
	}

	path := ObjectPath(audit)
	_, err = s.client.PutObject(ctx, s.bucket, path,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put audit object %s: %w", path, err)
	}
	s.log.Debug("audit saved", "path", path, "transaction_id", audit.Transaction.ID)
	return nil
}

// ObjectPath is a durable contract for downstream audit consumers:
// <year>/<month>/<day>/transaction-<transactionId>.json, from the audit
// timestamp's UTC calendar date.
func ObjectPath(audit domain.AuditLog) string {
	t := audit.Timestamp.UTC()
	return fmt.Sprintf("%04d/%02d/%02d/transaction-%s.json",
		t.Year(), int(t.Month()), t.Day(), audit.Transaction.ID)
}

type auditDocument struct {
	AuditID          string              `json:"auditId"`
	Timestamp        time.Time           `json:"timestamp"`
	EventType        string              `json:"eventType"`
	Status           string              `json:"status"`
	Order            orderDocument       `json:"order"`
	Transaction      transactionDocument `json:"transaction"`
	ProcessingTimeMs int64               `json:"processingTimeMs"`
}

type orderDocument struct {
	OrderID     string         `json:"orderId"`
	CustomerID  string         `json:"customerId"`
	Items       []itemDocument `json:"items"`
	TotalAmount string         `json:"totalAmount"`
}

type itemDocument struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type transactionDocument struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	CustomerID  string    `json:"customerId"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	ProcessedAt time.Time `json:"processedAt"`
}

func toAuditDocument(audit domain.AuditLog) auditDocument {
	items := make([]itemDocument, 0, len(audit.Order.Items()))
	for _, it := range audit.Order.Items() {
		items = append(items, itemDocument{
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
		})
	}
	return auditDocument{
		AuditID:   audit.AuditID,
		Timestamp: audit.Timestamp,
		EventType: audit.EventType,
		Status:    audit.Status,
		Order: orderDocument{
			OrderID:     audit.Order.ID().String(),
			CustomerID:  audit.Order.CustomerID().String(),
			Items:       items,
			TotalAmount: audit.Order.TotalAmount().String(),
		},
		Transaction: transactionDocument{
			ID:          audit.Transaction.ID.String(),
			OrderID:     audit.Transaction.OrderID.String(),
			CustomerID:  audit.Transaction.CustomerID.String(),
			Amount:      audit.Transaction.Amount.String(),
			Status:      string(audit.Transaction.Status),
			Timestamp:   audit.Transaction.Timestamp,
			ProcessedAt: audit.Transaction.ProcessedAt,
		},
		ProcessingTimeMs: audit.ProcessingTime.Milliseconds(),
	}
}
