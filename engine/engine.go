package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/aethermac/lrwpan/log"
	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/mac"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/reqresp"
	"github.com/aethermac/lrwpan/sap"
)

// Commander is the handle a MAC user drives the engine through: Request
// sends a SAP request and blocks for its confirm, and Indications yields
// the channel of events (and expected responses) the engine pushes upward.
type Commander struct {
	requests    *reqresp.ReqResp[sap.Request, sap.Confirm]
	indications *reqresp.ReqResp[sap.Indication, sap.Response]
}

// Request sends req to the engine and blocks for its confirm.
func (c *Commander) Request(ctx context.Context, req sap.Request) (sap.Confirm, error) {
	return c.requests.Request(ctx, req)
}

// WaitForIndication blocks until the engine has an indication to deliver,
// returning the token to pass back to RespondToIndication.
func (c *Commander) WaitForIndication(ctx context.Context) (uint64, sap.Indication, error) {
	return c.indications.WaitForRequest(ctx)
}

// RespondToIndication answers the indication that id names. Indications
// that don't expect an answer (data, beacon-notify, comm-status, ...)
// should be answered with sap.Response{Kind: sap.ResponseNone}.
func (c *Commander) RespondToIndication(id uint64, resp sap.Response) {
	c.indications.Respond(id, resp)
}

// Engine owns the MAC sublayer's PIBs and session state and runs the single
// goroutine that mutates them, per Run.
type Engine struct {
	tx     phy.Transceiver
	macPib pib.MacPib
	state  *mac.State
	rng    *rand.Rand
	log    log.Clog

	requests    *reqresp.ReqResp[sap.Request, sap.Confirm]
	indications *reqresp.ReqResp[sap.Indication, sap.Response]

	reqCh   chan pendingRequest
	radioCh chan phy.ProcessingContext
	jobs    chan func(context.Context)

	nextBeaconAt lrwpantime.Instant
}

type pendingRequest struct {
	id  uint64
	req sap.Request
}

// New builds an Engine and the Commander used to drive it. tx's PhyPib is
// adopted as-is; the MAC PIB starts at its power-on default with
// cfg.ExtendedAddress burned in.
func New(tx phy.Transceiver, cfg Config) (*Engine, *Commander, error) {
	if err := cfg.Valid(); err != nil {
		return nil, nil, err
	}

	macPib := pib.DefaultMacPib()
	macPib.ExtendedAddress = cfg.ExtendedAddress

	requests := reqresp.New[sap.Request, sap.Confirm](cfg.RequestQueueCapacity)
	indications := reqresp.New[sap.Indication, sap.Response](cfg.IndicationQueueCapacity)

	eng := &Engine{
		tx:          tx,
		macPib:      macPib,
		state:       mac.New(),
		rng:         rand.New(rand.NewSource(int64(cfg.ExtendedAddress))),
		log:         log.New("engine", nil),
		requests:    requests,
		indications: indications,
		reqCh:       make(chan pendingRequest),
		radioCh:     make(chan phy.ProcessingContext),
		jobs:        make(chan func(context.Context)),
	}
	return eng, &Commander{requests: requests, indications: indications}, nil
}

// Run drives the engine until ctx is cancelled: it services SAP requests,
// processes inbound frames, and keeps beacons/scans/follow-up data requests
// moving as their deadlines come due. It does not return until ctx is done.
//
// Two background goroutines feed e.reqCh/e.radioCh for the engine's whole
// lifetime, rather than one pair spawned per iteration, so neither leaks a
// goroutine parked on a blocking call every time tick's select picks a
// different branch.
func (e *Engine) Run(ctx context.Context) {
	defer e.requests.Close()
	defer e.indications.Close()

	go func() {
		for {
			id, req, err := e.requests.WaitForRequest(ctx)
			if err != nil {
				return
			}
			select {
			case e.reqCh <- pendingRequest{id, req}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		for {
			pctx, err := e.tx.Wait(ctx)
			if err != nil {
				return
			}
			select {
			case e.radioCh <- pctx:
			case <-ctx.Done():
				return
			}
		}
	}()

	for ctx.Err() == nil {
		e.tick(ctx)
	}
}

// tick waits for whichever of the engine's event sources is ready first
// and handles it. Split out from Run so a single iteration can be driven
// directly in tests.
func (e *Engine) tick(ctx context.Context) {
	now, err := e.tx.Instant(ctx)
	if err != nil {
		e.log.Error("reading current instant: %v", err)
		return
	}

	if e.state.IsPanCoordinator || e.macPib.RxOnWhenIdle || e.state.CurrentScan != nil {
		if err := e.tx.StartReceive(ctx); err != nil {
			e.log.Error("starting receive: %v", err)
		}
	}

	deadline, what := e.nextDeadline(now)

	var timerCh <-chan time.Time
	if what != deadlineNone {
		wait := deadline.Sub(now)
		timer := time.NewTimer(time.Duration(wait.Seconds() * float64(time.Second)))
		defer timer.Stop()
		timerCh = timer.C
	}

	select {
	case <-ctx.Done():
	case r := <-e.reqCh:
		e.handleRequest(ctx, r.id, r.req)
	case pctx := <-e.radioCh:
		e.handlePhyWaitDone(ctx, pctx)
	case job := <-e.jobs:
		job(ctx)
	case <-timerCh:
		e.handleDeadline(ctx, what)
	}
}

type deadlineKind uint8

const (
	deadlineNone deadlineKind = iota
	deadlineScanAction
	deadlineIndependentDataRequest
	deadlinePendingExpiry
	deadlineBeacon
)

// nextDeadline finds the soonest scheduled thing the engine must act on:
// a due scan action, a scheduled independent data request, or a pending
// (indirect) transaction's expiry.
func (e *Engine) nextDeadline(now lrwpantime.Instant) (lrwpantime.Instant, deadlineKind) {
	best := lrwpantime.Instant(0)
	kind := deadlineNone
	have := false

	consider := func(t lrwpantime.Instant, k deadlineKind) {
		if !have || t.Before(best) {
			best, kind, have = t, k, true
		}
	}

	if e.state.CurrentScan != nil {
		consider(now.Add(e.state.CurrentScan.NextWaitDuration(now)), deadlineScanAction)
	}

	if req, ok := e.state.Scheduler.TakeIndependentDataRequest(); ok {
		e.state.Scheduler.ScheduleDataRequest(req)
		consider(req.Timestamp, deadlineIndependentDataRequest)
	}

	if e.state.Pending.Len() > 0 {
		consider(now, deadlinePendingExpiry)
	}

	if e.state.BeaconMode != mac.BeaconModeOff {
		consider(e.nextBeaconAt, deadlineBeacon)
	}

	if !have {
		return now, deadlineNone
	}
	return best, kind
}
