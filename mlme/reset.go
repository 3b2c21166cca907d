// Package mlme implements the MAC sublayer management entity procedures:
// the request handlers the engine's event loop dispatches to when a SAP
// request arrives (reset, start, scan, associate, get, set, data).
package mlme

import (
	"context"
	"math/rand"

	"github.com/aethermac/lrwpan/mac"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/sap"
)

// Reset implements MLME-RESET.request (5.1.2.1): optionally restores the
// PIB to its power-on defaults, then always resets the session state
// (scheduler, scan process, pending table, beacon mode).
func Reset(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, state *mac.State, rng *rand.Rand, req sap.ResetRequest) sap.ResetConfirm {
	if req.SetDefaultPib {
		if err := tx.Reset(ctx); err != nil {
			return sap.ResetConfirm{Status: sap.StatusPhyError}
		}
		*macPib = pib.DefaultMacPib()
		macPib.Bsn = uint8(rng.Intn(256))
		macPib.Dsn = uint8(rng.Intn(256))
	}

	state.Reset()

	return sap.ResetConfirm{Status: sap.StatusSuccess}
}
