package sap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusStringKnown(t *testing.T) {
	assert.Equal(t, "Success", StatusSuccess.String())
	assert.Equal(t, "ReadOnly", StatusReadOnly.String())
	assert.Equal(t, "ScanInProgress", StatusScanInProgress.String())
}

func TestStatusStringUnknown(t *testing.T) {
	assert.Equal(t, "StatusUnknown", Status(200).String())
}

func TestRequestConfirmKindRoundTrip(t *testing.T) {
	req := Request{Kind: RequestReset, Reset: ResetRequest{SetDefaultPib: true}}
	assert.Equal(t, RequestReset, req.Kind)
	assert.True(t, req.Reset.SetDefaultPib)
}

func TestSecurityInfoHasSecurity(t *testing.T) {
	assert.False(t, SecurityInfo{}.HasSecurity())
	assert.True(t, SecurityInfo{SecurityLevel: SecurityLevelEnc}.HasSecurity())
}
