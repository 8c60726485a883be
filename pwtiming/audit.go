package pwtiming

import (
	"encoding/json"

	"github.com/IMQS/log"
	"github.com/IMQS/serviceauth"
)

const auditActionTimingAttack = "Timing Attack"

// Auditor is told about every finished attack
type Auditor interface {
	AuditAttack(result AttackResult)
}

type IMQSAuditor struct {
	Log *log.Logger
}

func NewIMQSAuditor(logger *log.Logger) *IMQSAuditor {
	return &IMQSAuditor{Log: logger}
}

// Never includes the password
type attackAuditContext struct {
	Service    string `json:"service"`
	Username   string `json:"username"`
	Length     int    `json:"length"`
	State      string `json:"state"`
	Reason     string `json:"reason,omitempty"`
	Iterations int    `json:"iterations"`
}

func (a *IMQSAuditor) AuditAttack(result AttackResult) {
	details := attackAuditContext{
		Service:    "pwtiming",
		Username:   result.User,
		Length:     result.Length.Length,
		State:      result.Content.State.String(),
		Iterations: result.Content.Iterations,
	}
	if result.Content.State == StateAborted {
		details.Reason = result.Content.Reason.String()
	}
	contextData, err := json.Marshal(details)
	if err != nil {
		a.Log.Errorf("%v", err)
		return
	}
	if err := serviceauth.AddToAuditLogServiceToService(result.User, auditActionTimingAttack, "Password timing attack: "+result.User, string(contextData)); err != nil {
		a.Log.Errorf("%v", err)
	}
}
