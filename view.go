package tns

import (
	"fmt"
	"strings"

	"github.com/everFinance/tns/schema"
)

type ViewConfig struct {
	Contract string
	Owner    string // withdraw is offered to this account only; empty disables it
}

func Render(s State, cfg ViewConfig) schema.View {
	v := schema.View{Alert: s.Alert}
	if s.Account == "" {
		v.Screen = schema.ScreenConnect
		v.Connect = &schema.ConnectView{
			Title:   "Tetas Name Service",
			Tagline: "your immortal API on the blockchain",
			Button:  schema.Button{Label: "Connect Wallet", Action: schema.ActionConnect},
		}
		return v
	}

	v.Screen = schema.ScreenApp
	v.Nav = renderNav(s)
	if s.Network != schema.TargetNetworkName {
		v.SwitchPrompt = &schema.SwitchPromptView{
			Message: schema.SwitchNetworkMsg,
			Button:  schema.Button{Label: "Switch Network", Action: schema.ActionSwitch},
		}
	} else {
		v.Form = renderForm(s)
	}
	if len(s.Mints) > 0 {
		v.Gallery = renderGallery(s, cfg.Contract)
	}
	// compared as-is, unlike the gallery's edit check
	if cfg.Owner != "" && s.Account == cfg.Owner {
		v.Withdraw = &schema.Button{Label: "withdraw", Action: schema.ActionWithdraw}
	}
	return v
}

func renderNav(s State) *schema.NavView {
	nav := &schema.NavView{Account: s.Account, Network: s.Network}
	if strings.Contains(s.Network, "Polygon") {
		nav.ExplorerUrl = schema.PolygonScan + "address/" + s.Account
		nav.ExplorerLabel = "View on polygonscan"
		nav.Icon = "matic"
	} else {
		nav.ExplorerUrl = schema.EtherScan + "address/" + s.Account
		nav.ExplorerLabel = "View on etherscan"
		nav.Icon = "eth"
	}
	return nav
}

func renderForm(s State) *schema.FormView {
	form := &schema.FormView{
		Domain:    s.Domain,
		Record:    s.Record,
		Tld:       schema.TLD,
		MaxLength: schema.MaxDomainLength,
	}
	if s.Editing {
		form.Buttons = []schema.Button{
			{Label: "Set Record", Action: schema.ActionRecord, Disabled: s.Loading},
			{Label: "Cancel", Action: schema.ActionCancel},
		}
	} else {
		form.Buttons = []schema.Button{
			{Label: "MINT", Action: schema.ActionMint, Disabled: s.Loading},
		}
	}
	return form
}

func renderGallery(s State, contract string) *schema.GalleryView {
	items := make([]schema.GalleryItem, 0, len(s.Mints))
	for _, m := range s.Mints {
		items = append(items, schema.GalleryItem{
			MintRecord: m,
			Display:    m.Name + schema.TLD,
			Editable:   strings.EqualFold(m.Owner, s.Account),
			OpenSeaUrl: fmt.Sprintf("%s%s/%d", schema.OpenSeaTest, contract, m.Id),
		})
	}
	return &schema.GalleryView{Items: items}
}
