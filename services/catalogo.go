package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jfcastellanos/marketplace-app/models"
)

// ignoreDuplicates deja el INSERT como INSERT IGNORE para las tablas de
// union con clave compuesta.
func ignoreDuplicates() clause.OnConflict {
	return clause.OnConflict{DoNothing: true}
}

// CatalogService concentra las reglas destructivas del etiquetado:
// desactivar una categoria o pasarla a rol filtro BORRA (no oculta) las
// filas dependientes, y las asignaciones masivas validan pertenencia al
// negocio antes de tocar nada.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// LimpiarCategoriaDesactivada borra las asociaciones imagen-categoria de la
// categoria y las asociaciones imagen-item de todos sus items. Reactivar la
// categoria despues NO las restaura.
func LimpiarCategoriaDesactivada(tx *gorm.DB, categoriaID uint) error {
	if err := tx.Where("categoria_id = ?", categoriaID).
		Delete(&models.ImagenCategoria{}).Error; err != nil {
		return err
	}
	return tx.Where("item_id IN (?)",
		tx.Model(&models.CategoriaItem{}).Select("id").Where("categoria_id = ?", categoriaID),
	).Delete(&models.ImagenItem{}).Error
}

// ConvertirEnFiltro borra los items de la categoria y sus asociaciones; las
// categorias de rol filtro no llevan items.
func ConvertirEnFiltro(tx *gorm.DB, categoriaID uint) error {
	if err := tx.Where("item_id IN (?)",
		tx.Model(&models.CategoriaItem{}).Select("id").Where("categoria_id = ?", categoriaID),
	).Delete(&models.ImagenItem{}).Error; err != nil {
		return err
	}
	return tx.Where("categoria_id = ?", categoriaID).
		Delete(&models.CategoriaItem{}).Error
}

// EliminarCategoria borra categoria, items y todas las asociaciones en una
// sola transaccion.
func (s *CatalogService) EliminarCategoria(categoriaID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := LimpiarCategoriaDesactivada(tx, categoriaID); err != nil {
			return err
		}
		if err := tx.Where("categoria_id = ?", categoriaID).
			Delete(&models.CategoriaItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Categoria{}, categoriaID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// EliminarItem borra el item y sus asociaciones con imagenes.
func (s *CatalogService) EliminarItem(categoriaID, itemID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).
			Delete(&models.ImagenItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND categoria_id = ?", itemID, categoriaID).
			Delete(&models.CategoriaItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// OwnershipError lista los ids que no pertenecen al negocio o estan
// inactivos; el controller lo mapea a 400.
type OwnershipError struct {
	Que string
	IDs []uint
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("%s invalidos o no pertenecen al negocio: %v", e.Que, e.IDs)
}

func faltantes(enviados, validos []uint) []uint {
	ok := make(map[uint]bool, len(validos))
	for _, id := range validos {
		ok[id] = true
	}
	var out []uint
	for _, id := range enviados {
		if !ok[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s *CatalogService) imagenesDelNegocio(negocioID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var validos []uint
	err := s.DB.Model(&models.Imagen{}).
		Where("negocio_id = ? AND id IN ?", negocioID, ids).
		Pluck("id", &validos).Error
	if err != nil {
		return nil, err
	}
	if len(validos) != len(ids) {
		return nil, &OwnershipError{Que: "imagenes", IDs: faltantes(ids, validos)}
	}
	return validos, nil
}

func (s *CatalogService) categoriasDelNegocio(negocioID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var validos []uint
	err := s.DB.Model(&models.Categoria{}).
		Where("negocio_id = ? AND estado = 1 AND id IN ?", negocioID, ids).
		Pluck("id", &validos).Error
	if err != nil {
		return nil, err
	}
	if len(validos) != len(ids) {
		return nil, &OwnershipError{Que: "categorias", IDs: faltantes(ids, validos)}
	}
	return validos, nil
}

// itemsDelNegocio valida items activos de categorias activas de rol
// atributo; los items colgados de una categoria filtro nunca son validos.
func (s *CatalogService) itemsDelNegocio(negocioID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var validos []uint
	err := s.DB.Model(&models.CategoriaItem{}).
		Joins("JOIN categorias c ON c.id = categoria_items.categoria_id").
		Where("c.negocio_id = ? AND c.estado = 1 AND c.rol <> ?", negocioID, models.RolFiltro).
		Where("categoria_items.estado = 1 AND categoria_items.id IN ?", ids).
		Pluck("categoria_items.id", &validos).Error
	if err != nil {
		return nil, err
	}
	if len(validos) != len(ids) {
		return nil, &OwnershipError{Que: "items", IDs: faltantes(ids, validos)}
	}
	return validos, nil
}

// AsignacionResumen reporta lo aplicado por una asignacion masiva.
type AsignacionResumen struct {
	AppliedTo  int    `json:"applied_to"`
	Mode       string `json:"mode"`
	Categorias int    `json:"categorias"`
	Items      int    `json:"items"`
}

// Asignar etiqueta en bloque un conjunto de imagenes con categorias e
// items. mode "replace" limpia antes las asignaciones previas de esas
// imagenes; "add" solo agrega. Todo dentro de una transaccion.
func (s *CatalogService) Asignar(negocioID uint, imagenIDs, categoriaIDs, itemIDs []uint, mode string) (AsignacionResumen, error) {
	imgOK, err := s.imagenesDelNegocio(negocioID, imagenIDs)
	if err != nil {
		return AsignacionResumen{}, err
	}
	catOK, err := s.categoriasDelNegocio(negocioID, categoriaIDs)
	if err != nil {
		return AsignacionResumen{}, err
	}
	itOK, err := s.itemsDelNegocio(negocioID, itemIDs)
	if err != nil {
		return AsignacionResumen{}, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if mode == "replace" {
			if err := tx.Where("imagen_id IN ?", imgOK).Delete(&models.ImagenCategoria{}).Error; err != nil {
				return err
			}
			if err := tx.Where("imagen_id IN ?", imgOK).Delete(&models.ImagenItem{}).Error; err != nil {
				return err
			}
		}

		if len(catOK) > 0 {
			rows := make([]models.ImagenCategoria, 0, len(imgOK)*len(catOK))
			for _, img := range imgOK {
				for _, cat := range catOK {
					rows = append(rows, models.ImagenCategoria{ImagenID: img, CategoriaID: cat})
				}
			}
			if err := tx.Clauses(ignoreDuplicates()).Create(&rows).Error; err != nil {
				return err
			}
		}

		if len(itOK) > 0 {
			rows := make([]models.ImagenItem, 0, len(imgOK)*len(itOK))
			for _, img := range imgOK {
				for _, it := range itOK {
					rows = append(rows, models.ImagenItem{ImagenID: img, ItemID: it})
				}
			}
			if err := tx.Clauses(ignoreDuplicates()).Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return AsignacionResumen{}, err
	}

	return AsignacionResumen{
		AppliedTo:  len(imgOK),
		Mode:       mode,
		Categorias: len(catOK),
		Items:      len(itOK),
	}, nil
}

// LimpiarAsignaciones quita categorias y/o items de un bloque de imagenes.
func (s *CatalogService) LimpiarAsignaciones(negocioID uint, imagenIDs []uint, categorias, items bool) (int64, error) {
	imgOK, err := s.imagenesDelNegocio(negocioID, imagenIDs)
	if err != nil {
		return 0, err
	}
	if len(imgOK) == 0 {
		return 0, nil
	}

	var cleared int64
	if categorias {
		res := s.DB.Where("imagen_id IN ?", imgOK).Delete(&models.ImagenCategoria{})
		if res.Error != nil {
			return cleared, res.Error
		}
		cleared += res.RowsAffected
	}
	if items {
		res := s.DB.Where("imagen_id IN ?", imgOK).Delete(&models.ImagenItem{})
		if res.Error != nil {
			return cleared, res.Error
		}
		cleared += res.RowsAffected
	}
	return cleared, nil
}
