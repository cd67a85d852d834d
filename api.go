package tns

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/everFinance/tns/common"
	"github.com/everFinance/tns/schema"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"gorm.io/gorm"
)

func (t *Tns) runAPI(port string) {
	t.registerRoutes()
	if port == "" {
		port = ":8080"
	}
	t.server = &http.Server{Addr: port, Handler: handlers.CompressHandler(t.engine)}
	go func() {
		log.Info("api server listen", "port", port)
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
}

func (t *Tns) registerRoutes() {
	r := t.engine
	r.Use(common.CORSMiddleware())
	v1 := r.Group("/")
	{
		v1.GET("/view", t.getView)
		v1.GET("/state", t.getState)
		v1.GET("/info", t.getInfo)
		v1.GET("/mints", t.getMints)
		v1.GET("/networks", t.getNetworks)
		v1.GET("/txs", t.getTxs)
		v1.GET("/tx/:hash", t.getReceipt)

		v1.PUT("/form", t.putForm)
		v1.POST("/edit/:name", t.postEdit)
		v1.POST("/cancel", t.postCancel)
		v1.POST("/alert/dismiss", t.postDismissAlert)

		// wallet and chain actions
		v2 := v1.Group("/")
		{
			v2.Use(common.LimiterMiddleware(t.config.RateLimit))
			v2.POST("/connect", t.async(schema.ActionConnect, t.controller.Connect))
			v2.POST("/network/switch", t.async(schema.ActionSwitch, t.controller.SwitchNetwork))
			v2.POST("/mint", t.async(schema.ActionMint, t.controller.Mint))
			v2.POST("/record", t.async(schema.ActionRecord, t.controller.UpdateRecord))
			v2.POST("/withdraw", t.async(schema.ActionWithdraw, t.controller.Withdraw))
			v2.POST("/reload", t.async("reload", t.controller.Reload))
			v2.POST("/refresh", t.async("refresh", t.controller.Refresh))
		}
	}
}

// async runs the action in the background; its outcome shows up in the view.
func (t *Tns) async(action string, fn func(ctx context.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := t.controller.Go(action, fn)
		c.JSON(http.StatusAccepted, schema.RespAccepted{Status: "accepted", ActionId: id})
	}
}

func (t *Tns) getView(c *gin.Context) {
	c.JSON(http.StatusOK, t.controller.View())
}

func (t *Tns) getState(c *gin.Context) {
	c.JSON(http.StatusOK, t.controller.State())
}

func (t *Tns) getInfo(c *gin.Context) {
	c.JSON(http.StatusOK, schema.RespInfo{
		Contract:      t.config.Contract,
		TargetChainId: schema.TargetChainId,
		TargetNetwork: schema.TargetNetworkName,
		Tld:           schema.TLD,
		OwnerGated:    t.config.OwnerAddress != "",
		HasWallet:     t.adapter.HasWallet(),
	})
}

func (t *Tns) getMints(c *gin.Context) {
	c.JSON(http.StatusOK, t.controller.State().Mints)
}

func (t *Tns) getNetworks(c *gin.Context) {
	res := make([]schema.RespNetwork, 0, len(schema.Networks))
	if t.wallet != nil {
		chains, err := t.wallet.Chains()
		if err != nil {
			internalErrorResponse(c, err.Error())
			return
		}
		for _, ch := range chains {
			name := schema.NetworkName(ch.ChainId)
			if name == "" {
				name = ch.ChainName
			}
			res = append(res, schema.RespNetwork{ChainId: ch.ChainId, Name: name})
		}
	}
	c.JSON(http.StatusOK, res)
}

func (t *Tns) getTxs(c *gin.Context) {
	if t.wdb == nil {
		c.JSON(http.StatusOK, []schema.TxRecord{})
		return
	}
	kind := c.Query("kind")
	switch kind {
	case "", schema.TxKindCreateDomain, schema.TxKindSetRecord, schema.TxKindWithdraw:
	default:
		errorResponse(c, ErrInvalidTxKind.Error())
		return
	}
	limit := schema.DefaultJournalLimit
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 || n > schema.MaxJournalLimit {
			errorResponse(c, ErrInvalidLimit.Error())
			return
		}
		limit = n
	}
	txs, err := t.wdb.GetTxs(kind, limit)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (t *Tns) getReceipt(c *gin.Context) {
	hash := c.Param("hash")
	r, err := t.receipt(c.Request.Context(), hash)
	if err == nil {
		c.JSON(http.StatusOK, r)
		return
	}
	if errors.Is(err, ErrNoReceipt) {
		// still pending, answer with the journal row when there is one
		if t.wdb != nil {
			if rec, err := t.wdb.GetTx(hash); err == nil {
				c.JSON(http.StatusAccepted, rec)
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				internalErrorResponse(c, err.Error())
				return
			}
		}
		c.JSON(http.StatusNotFound, schema.RespErr{Err: err.Error()})
		return
	}
	internalErrorResponse(c, err.Error())
}

func (t *Tns) putForm(c *gin.Context) {
	form := schema.ReqForm{}
	if err := c.ShouldBindJSON(&form); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if form.Domain != nil {
		t.controller.InputDomain(*form.Domain)
	}
	if form.Record != nil {
		t.controller.InputRecord(*form.Record)
	}
	c.JSON(http.StatusOK, t.controller.View())
}

func (t *Tns) postEdit(c *gin.Context) {
	t.controller.Edit(c.Param("name"))
	c.JSON(http.StatusOK, t.controller.View())
}

func (t *Tns) postCancel(c *gin.Context) {
	t.controller.Cancel()
	c.JSON(http.StatusOK, t.controller.View())
}

func (t *Tns) postDismissAlert(c *gin.Context) {
	t.controller.DismissAlert()
	c.JSON(http.StatusOK, t.controller.View())
}

func errorResponse(c *gin.Context, err string) {
	// client error
	c.JSON(http.StatusBadRequest, schema.RespErr{
		Err: err,
	})
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, schema.RespErr{
		Err: err,
	})
}
