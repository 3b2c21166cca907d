package mlme

import (
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/sap"
)

// Get implements MLME-GET.request: PHY attributes are tried first, then
// MAC attributes, matching the standard's single shared attribute
// namespace (a phy* and mac* prefix never collide in practice, but a PHY
// attribute always takes precedence if one ever did).
func Get(phyPib *pib.PhyPib, macPib *pib.MacPib, req sap.GetRequest) sap.GetConfirm {
	if v, status := phyPib.Get(req.PibAttribute); status == sap.StatusSuccess {
		return sap.GetConfirm{PibAttribute: req.PibAttribute, Status: status, Value: v}
	}

	v, status := macPib.Get(req.PibAttribute, phyPib)
	if status == sap.StatusSuccess {
		return sap.GetConfirm{PibAttribute: req.PibAttribute, Status: status, Value: v}
	}

	return sap.GetConfirm{PibAttribute: req.PibAttribute, Status: sap.StatusUnsupportedAttribute}
}

// Set implements MLME-SET.request: tries the PHY PIB first, then the MAC
// PIB. An attribute unknown to both reports StatusUnsupportedAttribute;
// an attribute known to one but rejected by its own validation reports
// that validation's status.
func Set(phyPib *pib.PhyPib, macPib *pib.MacPib, req sap.SetRequest) sap.SetConfirm {
	if status := phyPib.Set(req.PibAttribute, req.Value); status != sap.StatusUnsupportedAttribute {
		return sap.SetConfirm{PibAttribute: req.PibAttribute, Status: status}
	}

	status := macPib.Set(req.PibAttribute, req.Value)
	return sap.SetConfirm{PibAttribute: req.PibAttribute, Status: status}
}
