package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	outputJSON  = "json"
	outputPlain = "plain"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == outputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == outputJSON {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == outputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case GameLogin:
		o.printGameLogin(v)
	case Account:
		o.printAccount(v)
	case Cars:
		o.printCars(v)
	case OperationResult:
		o.printOperationResult(v)
	case AccessKey:
		o.printAccessKey(v)
	case []AccessKey:
		o.printAccessKeys(v)
	case []OperationLogEntry:
		o.printOperationLog(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Session response type (matches API)
type Session struct {
	Token     string    `json:"token"`
	Tier      string    `json:"tier"`
	IsAdmin   bool      `json:"is_admin"`
	Username  string    `json:"username,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GameLogin response type
type GameLogin struct {
	AuthToken    string `json:"auth_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	AccountID    string `json:"account_id"`
	Email        string `json:"email"`
}

// Account response type
type Account struct {
	LocalID      string `json:"local_id"`
	CleanLocalID string `json:"clean_local_id"`
	Name         string `json:"name"`
	Money        string `json:"money"`
}

// Cars response type
type Cars struct {
	Total  int      `json:"total"`
	CarIDs []string `json:"car_ids"`
}

// OperationDetails response type
type OperationDetails struct {
	OldLocalID      string `json:"old_local_id,omitempty"`
	NewLocalID      string `json:"new_local_id"`
	CarsUpdated     int    `json:"cars_updated"`
	CarsFailed      int    `json:"cars_failed"`
	TotalCars       int    `json:"total_cars"`
	TargetEmail     string `json:"target_email,omitempty"`
	TargetAccountID string `json:"target_account_id,omitempty"`
}

// OperationResult response type
type OperationResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details *OperationDetails `json:"details,omitempty"`
}

// AccessKey response type
type AccessKey struct {
	Code      string    `json:"code"`
	Tier      string    `json:"tier"`
	Redeemed  bool      `json:"redeemed"`
	CreatedAt time.Time `json:"created_at"`
}

// OperationLogEntry response type
type OperationLogEntry struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	OldLocalID  string    `json:"old_local_id,omitempty"`
	NewLocalID  string    `json:"new_local_id"`
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	CarsUpdated int       `json:"cars_updated"`
	CarsFailed  int       `json:"cars_failed"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSession(s Session) {
	if s.Username != "" {
		fmt.Printf("User: %s\n", s.Username)
	}
	fmt.Printf("Tier: %s\n", s.Tier)
	if s.IsAdmin {
		fmt.Println("Admin: yes")
	}
	fmt.Printf("Expires: %s\n", s.ExpiresAt.Format(time.RFC3339))
	fmt.Printf("Token: %s\n", s.Token)
}

func (o *Output) printGameLogin(g GameLogin) {
	fmt.Printf("Account: %s (%s)\n", g.Email, g.AccountID)
	fmt.Printf("Auth Token: %s\n", g.AuthToken)
}

func (o *Output) printAccount(a Account) {
	fmt.Printf("Local ID: %s\n", a.LocalID)
	if a.CleanLocalID != a.LocalID {
		fmt.Printf("Clean ID: %s\n", a.CleanLocalID)
	}
	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Money: %s\n", a.Money)
}

func (o *Output) printCars(c Cars) {
	fmt.Printf("Cars (%d):\n", c.Total)
	for _, id := range c.CarIDs {
		fmt.Printf("  - %s\n", id)
	}
}

func (o *Output) printOperationResult(r OperationResult) {
	if r.Success {
		fmt.Println("OK:", r.Message)
	} else {
		fmt.Println("FAILED:", r.Message)
	}
	if r.Details == nil {
		return
	}
	d := r.Details
	if d.OldLocalID != "" {
		fmt.Printf("Old ID: %s\n", d.OldLocalID)
	}
	fmt.Printf("New ID: %s\n", d.NewLocalID)
	if d.TargetEmail != "" {
		fmt.Printf("Target: %s (%s)\n", d.TargetEmail, d.TargetAccountID)
	}
	fmt.Printf("Cars: %d updated, %d failed of %d\n", d.CarsUpdated, d.CarsFailed, d.TotalCars)
}

func (o *Output) printAccessKey(k AccessKey) {
	redeemedStr := "no"
	if k.Redeemed {
		redeemedStr = "yes"
	}
	fmt.Printf("Key: %s\n", k.Code)
	fmt.Printf("Tier: %s\n", k.Tier)
	fmt.Printf("Redeemed: %s\n", redeemedStr)
	fmt.Printf("Created: %s\n", k.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printAccessKeys(keys []AccessKey) {
	fmt.Printf("Keys (%d):\n", len(keys))
	for _, k := range keys {
		redeemedStr := ""
		if k.Redeemed {
			redeemedStr = " [redeemed]"
		}
		fmt.Printf("  - %s (%s)%s\n", k.Code, k.Tier, redeemedStr)
	}
}

func (o *Output) printOperationLog(entries []OperationLogEntry) {
	fmt.Printf("Operations (%d):\n", len(entries))
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		id := e.NewLocalID
		if e.OldLocalID != "" {
			id = e.OldLocalID + " -> " + e.NewLocalID
		}
		fmt.Printf("  - %s %s %s (%s, cars %d/%d, %dms)\n",
			e.StartedAt.Format(time.RFC3339),
			strings.ReplaceAll(e.Kind, "_", "-"),
			id,
			status,
			e.CarsUpdated,
			e.CarsUpdated+e.CarsFailed,
			e.DurationMS,
		)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
