package adminhandlers

import (
	"errors"
	"fmt"

	"restaurant-admin/internal/api"
	"restaurant-admin/internal/dashboard"
)

var kindLabels = map[dashboard.OperationKind]string{
	dashboard.KindApproveOrder: "Approve order",
	dashboard.KindRejectOrder:  "Reject order",
	dashboard.KindAddMenu:      "Add menu item",
	dashboard.KindDeleteMenu:   "Delete menu item",
	dashboard.KindAddStaff:     "Add staff member",
	dashboard.KindStaffPresent: "Mark present",
	dashboard.KindStaffAbsent:  "Mark absent",
}

func operationLabel(op dashboard.Operation) string {
	label, ok := kindLabels[op.Kind]
	if !ok {
		return "Operation"
	}
	if op.Target == "" {
		return label
	}
	return fmt.Sprintf("%s %q", label, op.Target)
}

// describe превращает ошибку в короткое сообщение для flash.
func describe(err error) string {
	var stepErr *dashboard.StepError
	if errors.As(err, &stepErr) {
		return fmt.Sprintf("step %q failed, %s", stepErr.Step, describe(stepErr.Err))
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("the ordering API answered %d", statusErr.StatusCode)
	}
	return err.Error()
}

func isStepError(err error) bool {
	var stepErr *dashboard.StepError
	return errors.As(err, &stepErr)
}

func isNotFound(err error) bool {
	return errors.Is(err, dashboard.ErrOperationNotFound)
}
