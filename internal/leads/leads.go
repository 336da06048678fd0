// 包 leads：线索提交。先落库，再尽力发送邮件通知；通知失败不影响提交结果
package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"geo-leads/internal/logger"
	"geo-leads/internal/metrics"
	"geo-leads/internal/notify"
	"geo-leads/internal/store"

	"github.com/google/uuid"
)

const (
	WarnNotifyFailed  = "Saved, but email failed to send"
	WarnNotConfigured = "Saved, but email not configured"
)

// ValidationError：输入不合法，对应 HTTP 400
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

var (
	ErrAddressRequired = &ValidationError{Msg: "Address is required"}
	ErrBadCondition    = &ValidationError{Msg: "Property condition must be 1–10"}
	// ErrSave：落库失败，对应 HTTP 500
	ErrSave = errors.New("leads: database insert failed")
)

// Input：表单提交体；propertyCondition 可为数字、数字字符串、空串或 null
type Input struct {
	Address           string          `json:"address"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	PropertyCondition json.RawMessage `json:"propertyCondition"`
	Timeline          string          `json:"timeline"`
	Description       string          `json:"propertyDescription"`
}

// Meta：请求上下文信息
type Meta struct {
	IP        string
	UserAgent string
	GeoSlug   string
}

// Receipt：提交结果
type Receipt struct {
	OK        bool   `json:"ok"`
	ID        string `json:"id"`
	Ref       string `json:"ref"`
	CreatedAt string `json:"created_at"`
	Warning   string `json:"warning,omitempty"`
}

// Saver：线索持久化
type Saver interface {
	InsertLead(ctx context.Context, r store.LeadRow) (int64, time.Time, error)
}

type Service struct {
	saver  Saver
	notify notify.Notifier
}

func NewService(s Saver, n notify.Notifier) *Service { return &Service{saver: s, notify: n} }

// Condition：解析房况评分
// 返回：未填写时为 nil；取整数前缀（"7.5" 与 7.5 均为 7），超出 1..10 或无法解析时报错
func (in Input) Condition() (*int, error) {
	raw := bytes.TrimSpace(in.PropertyCondition)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, ErrBadCondition
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
	} else {
		s = string(raw)
	}
	n, ok := intPrefix(s)
	if !ok || n < 1 || n > 10 {
		return nil, ErrBadCondition
	}
	return &n, nil
}

// Validate：地址必填，房况评分合法
func (in Input) Validate() error {
	if strings.TrimSpace(in.Address) == "" {
		return ErrAddressRequired
	}
	_, err := in.Condition()
	return err
}

// Submit：校验、落库并通知
func (s *Service) Submit(ctx context.Context, in Input, m Meta) (Receipt, error) {
	if err := in.Validate(); err != nil {
		metrics.LeadsTotal.WithLabelValues("invalid").Inc()
		return Receipt{}, err
	}
	cond, _ := in.Condition()
	ref := uuid.NewString()
	id, at, err := s.saver.InsertLead(ctx, store.LeadRow{
		Ref:         ref,
		Address:     in.Address,
		Name:        in.Name,
		Email:       in.Email,
		Condition:   cond,
		Timeline:    in.Timeline,
		Description: in.Description,
		SourceIP:    m.IP,
		UserAgent:   m.UserAgent,
		GeoSlug:     m.GeoSlug,
	})
	if err != nil {
		metrics.LeadsTotal.WithLabelValues("db_error").Inc()
		logger.L().Error("lead_insert_error", "err", err)
		return Receipt{}, fmt.Errorf("%w: %v", ErrSave, err)
	}
	metrics.LeadsTotal.WithLabelValues("saved").Inc()
	logger.L().Info("lead_saved", "id", id, "ref", ref)
	rc := Receipt{OK: true, ID: strconv.FormatInt(id, 10), Ref: ref, CreatedAt: at.UTC().Format("2006-01-02T15:04:05.000Z")}

	if s.notify == nil || !s.notify.Configured() {
		metrics.NotifyTotal.WithLabelValues("skipped").Inc()
		logger.L().Warn("lead_notify_not_configured")
		rc.Warning = WarnNotConfigured
		return rc, nil
	}
	if err := s.notify.Send(ctx, Compose(rc, in, cond, m)); err != nil {
		metrics.NotifyTotal.WithLabelValues("error").Inc()
		logger.L().Error("lead_notify_error", "id", id, "err", err)
		rc.Warning = WarnNotifyFailed
		return rc, nil
	}
	metrics.NotifyTotal.WithLabelValues("sent").Inc()
	return rc, nil
}

func intPrefix(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}
