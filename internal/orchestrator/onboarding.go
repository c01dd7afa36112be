package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/logger"
	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
	"pharmaconnect_core/internal/state"
)

// UploadDocuments загружает только ещё не загруженные документы,
// параллельно, затем перечитывает список целиком
func (o *Orchestrator) UploadDocuments(ctx context.Context, docs []dto.UploadDocumentRequest) {
	ctx = logger.WithWorkflow(ctx, "upload_documents")
	defer o.beginLoading()()

	snap := o.store.Snapshot()
	required := models.DocumentsForRole(snap.UserRole)
	pending := make([]dto.UploadDocumentRequest, 0, len(docs))
	for _, doc := range docs {
		if snap.UploadedDocuments.IsUploaded(doc.DocumentType) {
			continue
		}
		err := o.validate(doc)
		if err == nil && len(required) > 0 && !slices.Contains(required, doc.DocumentType) {
			err = appErrors.ValidationError(fmt.Sprintf("document %q is not used for role %q", doc.DocumentType, snap.UserRole))
		}
		if err != nil {
			o.handleError(ctx, err, "")
			o.finish(ctx, "upload_documents", err)
			return
		}
		pending = append(pending, doc)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, doc := range pending {
		g.Go(func() error {
			_, err := o.services.DocumentService.UploadDocument(gctx, doc)
			return err
		})
	}
	err := g.Wait()
	if err == nil {
		err = o.loadDocuments(ctx)
	}
	if err != nil {
		o.handleError(ctx, err, "Failed to upload documents. Please try again.")
		o.finish(ctx, "upload_documents", err)
		return
	}

	o.success("Success", "Documents uploaded successfully. They will be reviewed within 2-3 business days.")

	// завершение онбординга
	o.store.Update(func(s state.State) state.Action {
		if s.IsAuthenticated || !s.IsContactVerified {
			return nil
		}
		return state.SetAuthenticated{Authenticated: true}
	})
	o.finish(ctx, "upload_documents", nil)
}

// CompleteContactInfo сохраняет контакты и отправляет код подтверждения
func (o *Orchestrator) CompleteContactInfo(ctx context.Context, phone, email string, method models.VerificationMethod) error {
	ctx = logger.WithWorkflow(ctx, "complete_contact_info")

	req := dto.UpdateContactRequest{Phone: strings.TrimSpace(phone), Email: strings.TrimSpace(email)}
	err := o.validate(req)
	if err == nil {
		err = o.validate(dto.ResendOTPRequest{Method: method})
	}
	if err != nil {
		o.handleError(ctx, err, "")
		o.finish(ctx, "complete_contact_info", err)
		return err
	}

	defer o.beginLoading()()

	err = o.services.UserService.UpdateContactInfo(ctx, req)
	if err == nil {
		o.store.Dispatch(state.SetUserData{UserPhone: state.Ptr(req.Phone), UserEmail: state.Ptr(req.Email)})
		err = o.services.AuthService.ResendOTP(ctx, method)
	}
	if err != nil {
		o.handleError(ctx, err, "Failed to update contact info")
		o.finish(ctx, "complete_contact_info", err)
		return err
	}

	o.success("Success", "Verification code sent to your "+string(method))
	o.finish(ctx, "complete_contact_info", nil)
	return nil
}

// VerifyOTP подтверждает контакт кодом из сообщения
func (o *Orchestrator) VerifyOTP(ctx context.Context, code string, method models.VerificationMethod) error {
	ctx = logger.WithWorkflow(ctx, "verify_otp")

	req := dto.VerifyOTPRequest{Code: strings.TrimSpace(code), Method: method}
	if err := o.validate(req); err != nil {
		o.handleError(ctx, err, "")
		o.finish(ctx, "verify_otp", err)
		return err
	}

	defer o.beginLoading()()

	if err := o.services.AuthService.VerifyOTP(ctx, req); err != nil {
		o.handleError(ctx, err, "Invalid verification code. Please try again.")
		o.finish(ctx, "verify_otp", err)
		return err
	}

	o.store.Dispatch(state.SetUserData{IsContactVerified: state.Ptr(true)})
	o.store.Update(func(s state.State) state.Action {
		if s.UserID == "" || s.IsAuthenticated {
			return nil
		}
		return state.SetAuthenticated{Authenticated: true}
	})
	o.success("Success", "Verification successful!")
	o.finish(ctx, "verify_otp", nil)
	return nil
}

// CompleteAddress сохраняет адрес аптеки
func (o *Orchestrator) CompleteAddress(ctx context.Context, address string) error {
	ctx = logger.WithWorkflow(ctx, "complete_address")

	req := dto.UpdateAddressRequest{Address: strings.TrimSpace(address)}
	err := o.validate(req)
	if err == nil {
		err = o.services.UserService.UpdateAddress(ctx, req.Address)
	}
	if err != nil {
		o.handleError(ctx, err, "Failed to update address")
		o.finish(ctx, "complete_address", err)
		return err
	}

	o.store.Dispatch(state.SetUserData{PharmacyAddress: state.Ptr(req.Address)})
	o.store.Update(func(s state.State) state.Action {
		if !s.IsContactVerified || s.IsAuthenticated {
			return nil
		}
		return state.SetAuthenticated{Authenticated: true}
	})
	o.finish(ctx, "complete_address", nil)
	return nil
}

// VerifyLicense отмечает лицензию подтверждённой локально
func (o *Orchestrator) VerifyLicense(ctx context.Context) {
	o.store.Dispatch(state.SetUserData{IsLicenseVerified: state.Ptr(true)})
	o.finish(logger.WithWorkflow(ctx, "verify_license"), "verify_license", nil)
}
