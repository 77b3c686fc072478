package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bounty-backend/internal/models"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Publisher 由 *nats.Conn 实现
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Envelope 发布到 NATS 的消息体
type Envelope struct {
	ID             string    `json:"id"`
	NotificationID int64     `json:"notification_id"`
	UserID         int64     `json:"user_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// NatsSink 按用户发布到 "<prefix>.<user_id>"
type NatsSink struct {
	pub    Publisher
	prefix string
}

func NewNatsSink(pub Publisher, subjectPrefix string) *NatsSink {
	if subjectPrefix == "" {
		subjectPrefix = "bounty.notifications"
	}
	return &NatsSink{pub: pub, prefix: subjectPrefix}
}

// DialNats 连接 NATS 服务器
func DialNats(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("bounty-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return nc, nil
}

func (s *NatsSink) Name() string { return "nats" }

// Subject 返回用户对应的主题
func (s *NatsSink) Subject(userID int64) string {
	return fmt.Sprintf("%s.%d", s.prefix, userID)
}

func (s *NatsSink) Send(ctx context.Context, n *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(Envelope{
		ID:             uuid.NewString(),
		NotificationID: n.ID,
		UserID:         n.UserID,
		Content:        n.Content,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	subject := s.Subject(n.UserID)
	if err := s.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
