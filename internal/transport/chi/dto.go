package chi

import (
	"github.com/kailas-cloud/cardex/internal/domain/card"
	"github.com/kailas-cloud/cardex/internal/domain/set"
)

type cardDTO struct {
	Name   string   `json:"name"`
	SetID  string   `json:"set_id"`
	Cost   *int     `json:"cost,omitempty"`
	Attack *int     `json:"attack,omitempty"`
	Health *int     `json:"health,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Text   string   `json:"text,omitempty"`
	Rarity string   `json:"rarity"`
	Image  string   `json:"image,omitempty"`
}

type setDTO struct {
	SetID     string `json:"set_id"`
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	CardCount int    `json:"card_count"`
}

type searchResponse struct {
	Query string    `json:"query"`
	Count int       `json:"count"`
	Cards []cardDTO `json:"cards"`
}

type setListResponse struct {
	Sets      []setDTO `json:"sets"`
	SetCount  int      `json:"set_count"`
	CardCount int      `json:"card_count"`
}

type refreshResponse struct {
	SetID     string `json:"set_id"`
	Refreshed bool   `json:"refreshed"`
}

type healthResponse struct {
	Status    string `json:"status"`
	SetCount  int    `json:"set_count"`
	CardCount int    `json:"card_count"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Pos     int    `json:"pos,omitempty"`
}

func cardToDTO(c card.Card) cardDTO {
	dto := cardDTO{
		Name:   c.Name(),
		SetID:  c.SetID(),
		Tags:   c.Tags(),
		Text:   c.Text(),
		Rarity: string(c.CardRarity()),
		Image:  c.Image(),
	}
	if v, ok := c.Cost(); ok {
		dto.Cost = &v
	}
	if v, ok := c.Attack(); ok {
		dto.Attack = &v
	}
	if v, ok := c.Health(); ok {
		dto.Health = &v
	}
	return dto
}

func setToDTO(st set.Set) setDTO {
	return setDTO{
		SetID:     st.ID(),
		Name:      st.Name(),
		Version:   st.Version(),
		CardCount: st.Len(),
	}
}
