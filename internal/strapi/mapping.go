package strapi

import "github.com/Rafamp34/soundstream/internal/models"

// image converts a media field into the domain image bundle.
// Absent media maps to nil, not a placeholder.
func (m *media) image() *models.Image {
	if m == nil || m.Data == nil {
		return nil
	}
	img := &models.Image{URL: m.Data.Attributes.URL}
	if f, ok := m.Data.Attributes.Formats["large"]; ok {
		img.Large = f.URL
	}
	if f, ok := m.Data.Attributes.Formats["medium"]; ok {
		img.Medium = f.URL
	}
	if f, ok := m.Data.Attributes.Formats["small"]; ok {
		img.Small = f.URL
	}
	if f, ok := m.Data.Attributes.Formats["thumbnail"]; ok {
		img.Thumbnail = f.URL
	}
	return img
}

// collection maps a page of wire entries through a per-entity decode
// function, preserving order. Shared by all three entity mappings.
func collection[T any](page, pageSize, pages int, items [][]byte, one func([]byte) (T, error)) (models.Page[T], error) {
	out := models.Page[T]{Page: page, PageSize: pageSize, Pages: pages, Items: make([]T, 0, len(items))}
	for _, item := range items {
		entity, err := one(item)
		if err != nil {
			return models.Page[T]{}, err
		}
		out.Items = append(out.Items, entity)
	}
	return out, nil
}
