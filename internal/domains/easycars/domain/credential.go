package domain

import "strings"

// Environment selects which EasyCars deployment a dealership talks to.
type Environment string

const (
	EnvironmentTest       Environment = "Test"
	EnvironmentProduction Environment = "Production"
)

// ParseEnvironment defaults to Test for anything that is not Production.
func ParseEnvironment(raw string) Environment {
	if strings.EqualFold(strings.TrimSpace(raw), string(EnvironmentProduction)) {
		return EnvironmentProduction
	}
	return EnvironmentTest
}

// Credential is the encrypted EasyCars account owned by a dealership.
// All secret fields are base64 ciphertext sharing the same IV.
type Credential struct {
	ID               int64
	DealershipID     int64
	ClientIDEnc      string
	ClientSecretEnc  string
	AccountNumberEnc string
	AccountSecretEnc string
	IV               string
	Environment      Environment
	YardCode         string
	Active           bool
}
