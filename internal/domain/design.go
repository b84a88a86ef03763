package domain

import "time"

// DesignStatus represents where a design is in the tailoring workflow.
type DesignStatus string

// Design statuses.
const (
	DesignStatusPending    DesignStatus = "pending"
	DesignStatusInProgress DesignStatus = "in_progress"
	DesignStatusCompleted  DesignStatus = "completed"
)

// Valid reports whether s is a known status.
func (s DesignStatus) Valid() bool {
	switch s {
	case DesignStatusPending, DesignStatusInProgress, DesignStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether a tailor may move a design from s to next.
// Completed designs are final; an in-progress design may be released back to pending.
func (s DesignStatus) CanTransitionTo(next DesignStatus) bool {
	switch s {
	case DesignStatusPending:
		return next == DesignStatusInProgress || next == DesignStatusCompleted
	case DesignStatusInProgress:
		return next == DesignStatusCompleted || next == DesignStatusPending
	}
	return false
}

// DesignCategory groups fabrics and designs (e.g. thobe, abaya, suit).
type DesignCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Fabric is a material available within a category.
type Fabric struct {
	ID            string    `json:"id"`
	CategoryID    string    `json:"category_id"`
	Name          string    `json:"name"`
	Color         string    `json:"color"`
	PricePerMeter float64   `json:"price_per_meter"`
	CreatedAt     time.Time `json:"created_at"`
}

// Design is a customer's garment configuration.
type Design struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Name          string         `json:"name"`
	CategoryID    string         `json:"category_id"`
	FabricID      string         `json:"fabric_id"`
	Customization map[string]any `json:"customization"`
	Status        DesignStatus   `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
