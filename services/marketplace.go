package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/jfcastellanos/marketplace-app/models"
)

// MarketplaceService arma el feed paginado del storefront: productos con
// sus etiquetas de filtro y sus grupos de atributos ya precio-tageados.
// El modo de precios llega por construccion y no cambia por request.
type MarketplaceService struct {
	DB   *gorm.DB
	Mode PriceMode
}

func NewMarketplaceService(db *gorm.DB, mode PriceMode) *MarketplaceService {
	return &MarketplaceService{DB: db, Mode: mode}
}

type FeedParams struct {
	NegocioID   uint
	Q           string
	CategoriaID uint // categoria de rol filtro; otros roles no filtran
	Page        int
	Size        int
}

type FeedItem struct {
	ID           uint            `json:"id"`
	Nombre       string          `json:"nombre"`
	Descripcion  string          `json:"descripcion"`
	BasePrecio   float64         `json:"base_precio"`
	ImagenID     uint            `json:"imagen_id"`
	ImagenURL    string          `json:"imagen_url"`
	ImagenTitulo string          `json:"imagen_titulo"`
	Filtros      []CategoriaRef  `json:"filtros"`
	Atributos    []AtributoGrupo `json:"atributos"`
}

type FeedPage struct {
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Items []FeedItem `json:"items"`
}

type feedRow struct {
	ID           uint
	Nombre       *string
	Descripcion  *string
	BasePrecio   float64
	ImagenID     uint
	ImagenURL    string
	ImagenTitulo string
}

func (s *MarketplaceService) baseQuery(p FeedParams) *gorm.DB {
	q := s.DB.Model(&models.Producto{}).
		Joins("JOIN imagenes i ON i.id = productos.imagen_id").
		Where("productos.negocio_id = ? AND productos.estado = 1 AND i.estado = 1", p.NegocioID)

	if p.Q != "" {
		like := "%" + p.Q + "%"
		q = q.Where("(productos.nombre LIKE ? OR productos.descripcion LIKE ? OR i.titulo LIKE ?)", like, like, like)
	}

	if p.CategoriaID != 0 {
		q = q.Where(`EXISTS (
			SELECT 1 FROM imagen_categoria fc
			JOIN categorias c2 ON c2.id = fc.categoria_id
			WHERE fc.imagen_id = i.id
			  AND c2.rol = ? AND c2.estado = 1
			  AND fc.categoria_id = ?)`, models.RolFiltro, p.CategoriaID)
	}
	return q
}

func (s *MarketplaceService) Feed(p FeedParams) (FeedPage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = 20
	}
	if p.Size > 200 {
		p.Size = 200
	}

	var total int64
	if err := s.baseQuery(p).Count(&total).Error; err != nil {
		return FeedPage{}, err
	}

	var rows []feedRow
	err := s.baseQuery(p).
		Select("productos.id, productos.nombre, productos.descripcion, productos.base_precio, productos.imagen_id, i.url AS imagen_url, i.titulo AS imagen_titulo").
		Order("productos.id DESC").
		Limit(p.Size).
		Offset((p.Page - 1) * p.Size).
		Scan(&rows).Error
	if err != nil {
		return FeedPage{}, err
	}

	page := FeedPage{Total: total, Page: p.Page, Size: p.Size, Items: []FeedItem{}}
	if len(rows) == 0 {
		return page, nil
	}

	imagenIDs := make([]uint, 0, len(rows))
	productoIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		imagenIDs = append(imagenIDs, r.ImagenID)
		productoIDs = append(productoIDs, r.ID)
	}

	filtros, err := s.filtrosPorImagen(imagenIDs)
	if err != nil {
		return FeedPage{}, err
	}
	attrs, err := s.atributosPorImagen(imagenIDs)
	if err != nil {
		return FeedPage{}, err
	}
	resolver, err := s.recargoResolver(p.NegocioID, productoIDs)
	if err != nil {
		return FeedPage{}, err
	}

	for _, r := range rows {
		item := FeedItem{
			ID:           r.ID,
			Descripcion:  deref(r.Descripcion),
			BasePrecio:   r.BasePrecio,
			ImagenID:     r.ImagenID,
			ImagenURL:    r.ImagenURL,
			ImagenTitulo: r.ImagenTitulo,
			Filtros:      []CategoriaRef{},
			Atributos:    []AtributoGrupo{},
		}

		// nombre con fallback: producto -> titulo de imagen -> "Producto N"
		switch {
		case r.Nombre != nil && *r.Nombre != "":
			item.Nombre = *r.Nombre
		case r.ImagenTitulo != "":
			item.Nombre = r.ImagenTitulo
		default:
			item.Nombre = fmt.Sprintf("Producto %d", r.ID)
		}

		if f, ok := filtros[r.ImagenID]; ok {
			item.Filtros = f
		}
		for _, g := range attrs[r.ImagenID] {
			grupo := AtributoGrupo{Categoria: g.Categoria}
			for _, it := range g.Items {
				it.Recargo = resolver(r.ID, g.Categoria.ID, it.ID)
				grupo.Items = append(grupo.Items, it)
			}
			item.Atributos = append(item.Atributos, grupo)
		}

		page.Items = append(page.Items, item)
	}
	return page, nil
}

func (s *MarketplaceService) filtrosPorImagen(imagenIDs []uint) (map[uint][]CategoriaRef, error) {
	var rows []struct {
		ImagenID uint
		ID       uint
		Nombre   string
	}
	err := s.DB.Table("imagen_categoria").
		Select("imagen_categoria.imagen_id, c.id, c.nombre").
		Joins("JOIN categorias c ON c.id = imagen_categoria.categoria_id").
		Where("imagen_categoria.imagen_id IN ? AND c.rol = ? AND c.estado = 1", imagenIDs, models.RolFiltro).
		Order("c.orden, c.nombre").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint][]CategoriaRef)
	for _, r := range rows {
		out[r.ImagenID] = append(out[r.ImagenID], CategoriaRef{ID: r.ID, Nombre: r.Nombre})
	}
	return out, nil
}

// atributosPorImagen agrupa los items de atributo alcanzables desde las
// etiquetas de cada imagen; el recargo se resuelve aparte segun el modo.
func (s *MarketplaceService) atributosPorImagen(imagenIDs []uint) (map[uint][]AtributoGrupo, error) {
	var rows []struct {
		ImagenID        uint
		CategoriaID     uint
		CategoriaNombre string
		ItemID          uint
		Label           string
	}
	err := s.DB.Table("imagen_item").
		Select("imagen_item.imagen_id, ca.id AS categoria_id, ca.nombre AS categoria_nombre, ci.id AS item_id, ci.label").
		Joins("JOIN categoria_items ci ON ci.id = imagen_item.item_id AND ci.estado = 1").
		Joins("JOIN categorias ca ON ca.id = ci.categoria_id AND ca.rol = ? AND ca.estado = 1", models.RolAtributo).
		Where("imagen_item.imagen_id IN ?", imagenIDs).
		Order("ca.orden, ca.nombre, ci.orden, ci.label").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uint][]AtributoGrupo)
	for _, r := range rows {
		grupos := out[r.ImagenID]
		idx := -1
		for i := range grupos {
			if grupos[i].Categoria.ID == r.CategoriaID {
				idx = i
				break
			}
		}
		if idx == -1 {
			grupos = append(grupos, AtributoGrupo{
				Categoria: CategoriaRef{ID: r.CategoriaID, Nombre: r.CategoriaNombre},
			})
			idx = len(grupos) - 1
		}

		label := r.Label
		if label == "" {
			label = fmt.Sprintf("Item %d", r.ItemID)
		}
		grupos[idx].Items = append(grupos[idx].Items, AtributoItem{ID: r.ItemID, Label: label})
		out[r.ImagenID] = grupos
	}
	return out, nil
}

// recargoResolver precarga los overrides por producto y los globales del
// negocio y devuelve la funcion de resolucion para el modo configurado.
func (s *MarketplaceService) recargoResolver(negocioID uint, productoIDs []uint) (func(productoID, categoriaID, itemID uint) float64, error) {
	porProducto := make(map[[3]uint]float64)
	if s.Mode != PriceModeGlobal && len(productoIDs) > 0 {
		var pops []models.ProductoOpcionPrecio
		if err := s.DB.Where("product_id IN ?", productoIDs).Find(&pops).Error; err != nil {
			return nil, err
		}
		for _, p := range pops {
			porProducto[[3]uint{p.ProductoID, p.CategoriaID, p.ItemID}] = p.Precio
		}
	}

	globales := make(map[[2]uint]float64)
	if s.Mode != PriceModeProduct {
		var nips []models.NegocioItemPrecio
		if err := s.DB.Where("negocio_id = ?", negocioID).Find(&nips).Error; err != nil {
			return nil, err
		}
		for _, n := range nips {
			globales[[2]uint{n.CategoriaID, n.ItemID}] = n.Precio
		}
	}

	mode := s.Mode
	return func(productoID, categoriaID, itemID uint) float64 {
		var prod, glob *float64
		if v, ok := porProducto[[3]uint{productoID, categoriaID, itemID}]; ok {
			prod = &v
		}
		if v, ok := globales[[2]uint{categoriaID, itemID}]; ok {
			glob = &v
		}
		return mode.Recargo(prod, glob)
	}, nil
}

// GruposDeProducto devuelve los grupos de atributos de un producto con el
// recargo ya resuelto; lo usa el carrito para precificar una seleccion.
func (s *MarketplaceService) GruposDeProducto(prod *models.Producto) ([]AtributoGrupo, error) {
	attrs, err := s.atributosPorImagen([]uint{prod.ImagenID})
	if err != nil {
		return nil, err
	}
	resolver, err := s.recargoResolver(prod.NegocioID, []uint{prod.ID})
	if err != nil {
		return nil, err
	}

	var grupos []AtributoGrupo
	for _, g := range attrs[prod.ImagenID] {
		grupo := AtributoGrupo{Categoria: g.Categoria}
		for _, it := range g.Items {
			it.Recargo = resolver(prod.ID, g.Categoria.ID, it.ID)
			grupo.Items = append(grupo.Items, it)
		}
		grupos = append(grupos, grupo)
	}
	return grupos, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
