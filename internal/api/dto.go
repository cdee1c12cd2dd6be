package api

import (
	"time"

	"github.com/pzverkov/quantum-go-fips/pkg/fips"
)

// APIError is the body of every error response.
type APIError struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`
}

// TestResult is one self-test of a POST report.
type TestResult struct {
	Test     string `json:"test"`
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// POSTReport is the wire form of fips.Report.
type POSTReport struct {
	Started  time.Time    `json:"started"`
	Duration string       `json:"duration"`
	Passed   bool         `json:"passed"`
	Results  []TestResult `json:"results"`
	Error    string       `json:"error,omitempty"`
}

// StateResponse is the body of GET /state.
type StateResponse struct {
	Module               string      `json:"module"`
	State                string      `json:"state"`
	Operational          bool        `json:"operational"`
	Role                 string      `json:"role"`
	ComplianceMode       bool        `json:"compliance_mode"`
	KEMEnabled           bool        `json:"kem_enabled"`
	SignatureEnabled     bool        `json:"signature_enabled"`
	IntegrityProvisioned bool        `json:"integrity_provisioned"`
	LastPOST             *POSTReport `json:"last_post,omitempty"`
}

func newPOSTReport(r *fips.Report) *POSTReport {
	if r == nil {
		return nil
	}
	out := &POSTReport{
		Started:  r.Started,
		Duration: r.Duration.String(),
		Passed:   r.Passed,
		Results:  make([]TestResult, 0, len(r.Results)),
		Error:    r.Error,
	}
	for _, res := range r.Results {
		tr := TestResult{
			Test:     string(res.Test),
			Name:     res.Name,
			Passed:   res.Passed(),
			Duration: res.Duration.String(),
		}
		if res.Err != nil {
			tr.Error = res.Err.Error()
		}
		out.Results = append(out.Results, tr)
	}
	return out
}

func newStateResponse(s fips.Status) StateResponse {
	return StateResponse{
		Module:               s.Module,
		State:                s.State.String(),
		Operational:          s.State == fips.StateOperational,
		Role:                 s.Role.String(),
		ComplianceMode:       s.ComplianceMode,
		KEMEnabled:           s.KEMEnabled,
		SignatureEnabled:     s.SignatureEnabled,
		IntegrityProvisioned: s.IntegrityProvisioned,
		LastPOST:             newPOSTReport(s.LastPOST),
	}
}
