package main

import (
	"net/http"

	"github.com/devphaseX/voltvista-payments/internal/store"
)

func (app *application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	app.successResponse(w, http.StatusOK, envelope{
		"status": "available",
		"env":    app.cfg.Env,
		"providers": envelope{
			"card":   app.payments.Enabled(store.CardProvider),
			"wallet": app.payments.Enabled(store.WalletProvider),
		},
	})
}
