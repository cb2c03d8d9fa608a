package mapper

import (
	"riff-be/internal/entity"
	"riff-be/internal/model"
)

type FingerprintMapper struct{}

func NewFingerprintMapper() *FingerprintMapper {
	return &FingerprintMapper{}
}

func (m *FingerprintMapper) ToEntity(f *model.Fingerprint, insights []*model.Insight) *entity.Fingerprint {
	if f == nil {
		return nil
	}
	out := &entity.Fingerprint{
		Fp:        f.Fp,
		Mode:      f.Mode,
		RunId:     f.RunId,
		CreatedAt: f.CreatedAt,
		Insights:  make([]*entity.StoredInsight, len(insights)),
	}
	for i, in := range insights {
		out.Insights[i] = &entity.StoredInsight{
			Id:          in.InsightId,
			Fingerprint: in.Fp,
			Lane:        in.Persona,
			Position:    in.Position,
			Kind:        in.Kind,
			Content:     in.Content,
			Ts:          in.Ts,
		}
	}
	return out
}

func (m *FingerprintMapper) ToModel(f *entity.Fingerprint) *model.Fingerprint {
	if f == nil {
		return nil
	}
	return &model.Fingerprint{
		Fp:        f.Fp,
		Mode:      f.Mode,
		RunId:     f.RunId,
		CreatedAt: f.CreatedAt,
	}
}

func (m *FingerprintMapper) InsightsToModels(f *entity.Fingerprint) []*model.Insight {
	models := make([]*model.Insight, len(f.Insights))
	for i, in := range f.Insights {
		models[i] = &model.Insight{
			InsightId: in.Id,
			Fp:        f.Fp,
			Persona:   in.Lane,
			Position:  in.Position,
			Kind:      in.Kind,
			Content:   in.Content,
			Ts:        in.Ts,
		}
	}
	return models
}
