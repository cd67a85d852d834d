package sdk

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/everFinance/tns/schema"
	"gopkg.in/h2non/gentleman.v2"
)

var ErrTxPending = errors.New("tx_pending")

// TnsCli drives a running tns server over http.
type TnsCli struct {
	SCli *gentleman.Client
}

func New(tnsUrl string) *TnsCli {
	return &TnsCli{
		SCli: gentleman.New().URL(tnsUrl),
	}
}

func (a *TnsCli) Info() (schema.RespInfo, error) {
	info := schema.RespInfo{}
	err := a.get("/info", &info)
	return info, err
}

func (a *TnsCli) View() (schema.View, error) {
	v := schema.View{}
	err := a.get("/view", &v)
	return v, err
}

// State returns the raw page state; its shape matches the tns State json.
func (a *TnsCli) State() (map[string]interface{}, error) {
	s := make(map[string]interface{})
	err := a.get("/state", &s)
	return s, err
}

func (a *TnsCli) Mints() ([]schema.MintRecord, error) {
	mints := make([]schema.MintRecord, 0)
	err := a.get("/mints", &mints)
	return mints, err
}

func (a *TnsCli) Networks() ([]schema.RespNetwork, error) {
	nets := make([]schema.RespNetwork, 0)
	err := a.get("/networks", &nets)
	return nets, err
}

// Txs lists journaled transactions, newest first. kind "" and limit 0 use the server defaults.
func (a *TnsCli) Txs(kind string, limit int) ([]schema.TxRecord, error) {
	req := a.SCli.Get()
	req.Path("/txs")
	if kind != "" {
		req.AddQuery("kind", kind)
	}
	if limit > 0 {
		req.AddQuery("limit", strconv.Itoa(limit))
	}
	resp, err := req.Send()
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	if !resp.Ok {
		return nil, fmt.Errorf("resp failed: %s", resp.String())
	}
	txs := make([]schema.TxRecord, 0)
	err = resp.JSON(&txs)
	return txs, err
}

// Receipt returns ErrTxPending together with the journal row while the tx is not mined.
func (a *TnsCli) Receipt(hash string) (schema.Receipt, *schema.TxRecord, error) {
	req := a.SCli.Get()
	req.Path(fmt.Sprintf("/tx/%s", hash))
	resp, err := req.Send()
	if err != nil {
		return schema.Receipt{}, nil, err
	}
	defer resp.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		r := schema.Receipt{}
		err = resp.JSON(&r)
		return r, nil, err
	case http.StatusAccepted:
		rec := &schema.TxRecord{}
		if err = resp.JSON(rec); err != nil {
			return schema.Receipt{}, nil, err
		}
		return schema.Receipt{}, rec, ErrTxPending
	}
	return schema.Receipt{}, nil, fmt.Errorf("resp failed: %s", resp.String())
}

// SetForm updates the form inputs; a nil field is left untouched.
func (a *TnsCli) SetForm(domain, record *string) (schema.View, error) {
	req := a.SCli.Put()
	req.Path("/form")
	req.JSON(schema.ReqForm{Domain: domain, Record: record})
	v := schema.View{}
	err := a.send(req, &v)
	return v, err
}

func (a *TnsCli) Edit(name string) (schema.View, error) {
	return a.postView(fmt.Sprintf("/edit/%s", name))
}

func (a *TnsCli) Cancel() (schema.View, error) {
	return a.postView("/cancel")
}

func (a *TnsCli) DismissAlert() (schema.View, error) {
	return a.postView("/alert/dismiss")
}

// actions run in the background on the server, the returned id tags the txs they send

func (a *TnsCli) Connect() (string, error) {
	return a.action("/connect")
}

func (a *TnsCli) SwitchNetwork() (string, error) {
	return a.action("/network/switch")
}

func (a *TnsCli) Mint() (string, error) {
	return a.action("/mint")
}

func (a *TnsCli) UpdateRecord() (string, error) {
	return a.action("/record")
}

func (a *TnsCli) Withdraw() (string, error) {
	return a.action("/withdraw")
}

func (a *TnsCli) Reload() (string, error) {
	return a.action("/reload")
}

func (a *TnsCli) Refresh() (string, error) {
	return a.action("/refresh")
}

func (a *TnsCli) action(path string) (string, error) {
	req := a.SCli.Post()
	req.Path(path)
	acc := schema.RespAccepted{}
	if err := a.send(req, &acc); err != nil {
		return "", err
	}
	return acc.ActionId, nil
}

func (a *TnsCli) postView(path string) (schema.View, error) {
	req := a.SCli.Post()
	req.Path(path)
	v := schema.View{}
	err := a.send(req, &v)
	return v, err
}

func (a *TnsCli) get(path string, out interface{}) error {
	req := a.SCli.Get()
	req.Path(path)
	return a.send(req, out)
}

func (a *TnsCli) send(req *gentleman.Request, out interface{}) error {
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return fmt.Errorf("resp failed.http code: %d, errMsg:%s", resp.StatusCode, resp.String())
	}
	return resp.JSON(out)
}
