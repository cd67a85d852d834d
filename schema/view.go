package schema

const (
	ScreenConnect = "connect"
	ScreenApp     = "app"

	ActionConnect  = "connect"
	ActionSwitch   = "switchNetwork"
	ActionMint     = "mint"
	ActionRecord   = "setRecord"
	ActionCancel   = "cancel"
	ActionEdit     = "edit"
	ActionWithdraw = "withdraw"

	SwitchNetworkMsg = "Please switch to Polygon Mumbai network"
)

// View is what the page shows for a given state. Nil sections are not rendered.
type View struct {
	Screen       string            `json:"screen"`
	Connect      *ConnectView      `json:"connect,omitempty"`
	Nav          *NavView          `json:"nav,omitempty"`
	Form         *FormView         `json:"form,omitempty"`
	SwitchPrompt *SwitchPromptView `json:"switchPrompt,omitempty"`
	Gallery      *GalleryView      `json:"gallery,omitempty"`
	Withdraw     *Button           `json:"withdraw,omitempty"`
	Alert        string            `json:"alert,omitempty"`
}

type ConnectView struct {
	Title   string `json:"title"`
	Tagline string `json:"tagline"`
	Button  Button `json:"button"`
}

type NavView struct {
	Account       string `json:"account"`
	Network       string `json:"network"`
	ExplorerUrl   string `json:"explorerUrl"`
	ExplorerLabel string `json:"explorerLabel"`
	Icon          string `json:"icon"` // "matic" or "eth"
}

type FormView struct {
	Domain    string   `json:"domain"`
	Record    string   `json:"record"`
	Tld       string   `json:"tld"`
	MaxLength int      `json:"maxLength"`
	Buttons   []Button `json:"buttons"`
}

type Button struct {
	Label    string `json:"label"`
	Action   string `json:"action"`
	Disabled bool   `json:"disabled"`
}

type SwitchPromptView struct {
	Message string `json:"message"`
	Button  Button `json:"button"`
}

type GalleryView struct {
	Items []GalleryItem `json:"items"`
}

type GalleryItem struct {
	MintRecord
	Display    string `json:"display"` // name + tld
	Editable   bool   `json:"editable"`
	OpenSeaUrl string `json:"openSeaUrl"`
}
