package usecase

import "github.com/tatamedev/tatame-crm/internal/entity"

// LeadPatch é uma atualização parcial: só os ponteiros não-nulos são
// aplicados. O shape casa com o corpo JSON do PATCH de leads.
type LeadPatch struct {
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Type          *string `json:"type,omitempty"`
	Origin        *string `json:"origin,omitempty"`
	Status        *string `json:"status,omitempty"`
	ScheduledDate *string `json:"scheduledDate,omitempty"`
	ScheduledTime *string `json:"scheduledTime,omitempty"`
	ParentName    *string `json:"parentName,omitempty"`
	Age           *string `json:"age,omitempty"`

	IsFirstExperience *string `json:"isFirstExperience,omitempty"`
	Belt              *string `json:"belt,omitempty"`
	BorrowedKimono    *string `json:"borrowedKimono,omitempty"`
	BorrowedShirt     *string `json:"borrowedShirt,omitempty"`

	// Notes substitui o histórico inteiro (a interface sempre manda o
	// histórico acrescido da nova entrada).
	Notes *[]entity.Note `json:"notes,omitempty"`
}

// apply devolve o lead com o patch mesclado por cima.
func (p LeadPatch) apply(lead entity.Lead) entity.Lead {
	if p.Name != nil {
		lead.Name = *p.Name
	}
	if p.Phone != nil {
		lead.Phone = *p.Phone
	}
	if p.Type != nil {
		lead.Type = *p.Type
	}
	if p.Origin != nil {
		lead.Origin = *p.Origin
	}
	if p.Status != nil {
		lead.Status = *p.Status
	}
	if p.ScheduledDate != nil {
		lead.ScheduledDate = *p.ScheduledDate
	}
	if p.ScheduledTime != nil {
		lead.ScheduledTime = *p.ScheduledTime
	}
	if p.ParentName != nil {
		lead.ParentName = *p.ParentName
	}
	if p.Age != nil {
		lead.Age = *p.Age
	}
	if p.IsFirstExperience != nil {
		lead.IsFirstExperience = *p.IsFirstExperience
	}
	if p.Belt != nil {
		lead.Belt = *p.Belt
	}
	if p.BorrowedKimono != nil {
		lead.BorrowedKimono = *p.BorrowedKimono
	}
	if p.BorrowedShirt != nil {
		lead.BorrowedShirt = *p.BorrowedShirt
	}
	if p.Notes != nil {
		lead.Notes = *p.Notes
	}
	return lead
}

// touchesPackedField indica se o patch mexe em algo que vive dentro do
// campo notes empacotado do documento remoto.
func (p LeadPatch) touchesPackedField() bool {
	return p.Notes != nil || p.IsFirstExperience != nil || p.Belt != nil ||
		p.BorrowedKimono != nil || p.BorrowedShirt != nil
}

// remoteFields monta o payload de update: apenas as chaves alteradas,
// nunca id/createdAt, e os auxiliares só dentro do campo empacotado.
func (p LeadPatch) remoteFields(merged entity.Lead) map[string]any {
	fields := map[string]any{}

	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Phone != nil {
		fields["phone"] = *p.Phone
	}
	if p.Type != nil {
		fields["type"] = *p.Type
	}
	if p.Origin != nil {
		fields["origin"] = *p.Origin
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.ScheduledDate != nil {
		fields["scheduledDate"] = *p.ScheduledDate
	}
	if p.ScheduledTime != nil {
		fields["scheduledTime"] = *p.ScheduledTime
	}
	if p.ParentName != nil {
		fields["parentName"] = *p.ParentName
	}
	if p.Age != nil {
		fields["age"] = *p.Age
	}
	if p.touchesPackedField() {
		fields["notes"] = packNotes(merged)
	}

	return fields
}
