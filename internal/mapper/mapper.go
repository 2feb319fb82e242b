package mapper

import (
	"github.com/kamtrack/lead-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// ToLeadDTO converts Lead to LeadDTO
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	dto := domain.LeadDTO{
		ID:                lead.ID,
		Name:              lead.Name,
		Street:            lead.Street,
		City:              lead.City,
		State:             lead.State,
		ZipCode:           lead.ZipCode,
		Status:            lead.Status,
		AssignedKamID:     lead.AssignedKamID,
		CallFrequency:     lead.CallFrequency,
		LastCallDate:      lead.LastCallDate,
		NextCallDate:      lead.NextCallDate,
		AverageOrderValue: lead.AverageOrderValue,
		OrderFrequency:    lead.OrderFrequency,
		CreatedAt:         lead.CreatedAt.Format(timeFormat),
		UpdatedAt:         lead.UpdatedAt.Format(timeFormat),
	}

	if lead.AssignedKam != nil {
		dto.AssignedKamName = lead.AssignedKam.Name
	}

	for _, transfer := range lead.TransferHistory {
		dto.TransferHistory = append(dto.TransferHistory, ToLeadTransferDTO(&transfer))
	}

	return dto
}

// ToLeadTransferDTO converts LeadTransfer to LeadTransferDTO
func ToLeadTransferDTO(transfer *domain.LeadTransfer) domain.LeadTransferDTO {
	return domain.LeadTransferDTO{
		FromKamID: transfer.FromKamID,
		ToKamID:   transfer.ToKamID,
		Timestamp: transfer.CreatedAt.Format(timeFormat),
	}
}

// ToContactDTO converts Contact to ContactDTO
func ToContactDTO(contact *domain.Contact) domain.ContactDTO {
	return domain.ContactDTO{
		ID:        contact.ID,
		LeadID:    contact.LeadID,
		Name:      contact.Name,
		Role:      contact.Role,
		Email:     contact.Email,
		Phone:     contact.Phone,
		IsPrimary: contact.IsPrimary,
		CreatedAt: contact.CreatedAt.Format(timeFormat),
	}
}

// ToInteractionDTO converts Interaction to InteractionDTO
func ToInteractionDTO(interaction *domain.Interaction) domain.InteractionDTO {
	return domain.InteractionDTO{
		ID:         interaction.ID,
		LeadID:     interaction.LeadID,
		Type:       interaction.Type,
		ContactID:  interaction.ContactID,
		Notes:      interaction.Notes,
		Outcome:    interaction.Outcome,
		OrderValue: interaction.OrderValue,
		KamID:      interaction.KamID,
		CreatedAt:  interaction.CreatedAt.Format(timeFormat),
	}
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		Timezone:    user.Timezone,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt.Format(timeFormat),
	}
}
