// internal/handlers/admin/admin_orders.go
package adminhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"restaurant-admin/internal/dashboard"
	"restaurant-admin/internal/handlers"
)

// ApproveOrderHandler: подтверждение, тикет на кухню, удаление из ожидающих.
// Сбой шага виден в панели неудачных операций с кнопкой повтора, а не во flash.
func ApproveOrderHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		id := mux.Vars(r)["id"]
		op, err := board.Actions.ApproveOrder(r.Context(), id)
		switch {
		case err == nil:
			app.Flash(r, handlers.FlashSuccessKey, "Order "+id+" approved and sent to the kitchen.")
		case errors.Is(err, dashboard.ErrOrderNotFound):
			slog.Warn("Подтверждение заказа: заказа нет среди ожидающих", "order", id)
			app.Flash(r, handlers.FlashErrorKey, "Order "+id+" is no longer pending.")
		default:
			slog.Warn("Подтверждение заказа не удалось", "order", id, "step", op.FailedStep(), "error", err)
			if !isStepError(err) {
				app.Flash(r, handlers.FlashErrorKey, "Could not approve order "+id+": "+describe(err))
			}
		}
		http.Redirect(w, r, "/admin/orders", http.StatusSeeOther)
	}
}

func RejectOrderHandler(app *handlers.AppHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, ok := boardFrom(w, r)
		if !ok {
			return
		}
		id := mux.Vars(r)["id"]
		op, err := board.Actions.RejectOrder(r.Context(), id)
		if err != nil {
			slog.Warn("Отклонение заказа не удалось", "order", id, "step", op.FailedStep(), "error", err)
		} else {
			app.Flash(r, handlers.FlashSuccessKey, "Order "+id+" rejected.")
		}
		http.Redirect(w, r, "/admin/orders", http.StatusSeeOther)
	}
}
