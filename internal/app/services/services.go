// Package services holds the business rules of the organizer.
//
// Services defined in this package:
//   - AuthService: registration, login, token refresh and role selection
//   - SeedingService: the starter checklist for new accounts
//   - InvitationService: parent-issued student invitations
//   - EntitlementService: the paid access check behind the payment gate
//   - SessionStateStore: the cached client snapshot of a signed-in user
//   - TaskService, DocumentService, CategoryService: checklist CRUD
//   - PaymentService: purchases and provider webhooks
package services
