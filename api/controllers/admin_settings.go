package controllers

import (
	"net/http"

	"storefront-backend/api/responses"
	"storefront-backend/api/validators"
	"storefront-backend/internal/settings"
	"storefront-backend/pkg/logger"
)

type setSettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// AdminSettingsList returns every storefront setting.
func AdminSettingsList(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		list, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]settingDTO, 0, len(list))
		for i := range list {
			out = append(out, toSettingDTO(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminSettingsSet upserts one setting. Checkout reads settings as a snapshot,
// so changes apply to subsequent orders only.
func AdminSettingsSet(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body setSettingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		setting, err := svc.Set(ctx, body.Key, body.Value)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSettingDTO(setting))
	}
}
