package routes

import (
	"context"
	"docbook/cmd/internal/utils"
	"docbook/cmd/internal/utils/apierror"
)

type AccessPolicy interface {
	CanManageDoctor(ctx context.Context, caller *utils.TokenData, doctorID int) apierror.ErrorResponse
	CanViewStats(ctx context.Context, caller *utils.TokenData, doctorID *int) apierror.ErrorResponse
}
