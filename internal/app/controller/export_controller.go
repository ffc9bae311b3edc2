package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	"github.com/pngsmec/msme-registry-backend/internal/app/service"
	apperrors "github.com/pngsmec/msme-registry-backend/internal/errors"
	"github.com/pngsmec/msme-registry-backend/internal/middleware"
	"github.com/xuri/excelize/v2"
)

type ExportController struct {
	exportService service.ExportService
}

func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{exportService: exportService}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportSMEs handles GET /exports/smes
func (ctrl *ExportController) ExportSMEs(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.MSMEFilter{
		ProvinceID: c.Query("province_id"),
		DistrictID: c.Query("district_id"),
		Status:     c.Query("status"),
		Sector:     c.Query("sector"),
	}

	f, err := ctrl.exportService.ExportSMEs(filter)
	if err != nil {
		log.Error("MSME export failed", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ExportFailed, "Export failed. Please try again later")
		return
	}

	ctrl.writeWorkbook(c, f, fmt.Sprintf("msme-registry-%s.xlsx", time.Now().Format("2006-01-02")))
}

// ExportDuplicates handles GET /exports/duplicates
func (ctrl *ExportController) ExportDuplicates(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	f, err := ctrl.exportService.ExportDuplicates(c.Query("status"))
	if err != nil {
		log.Error("Duplicate export failed", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ExportFailed, "Export failed. Please try again later")
		return
	}

	ctrl.writeWorkbook(c, f, fmt.Sprintf("duplicate-candidates-%s.xlsx", time.Now().Format("2006-01-02")))
}

func (ctrl *ExportController) writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	log := middleware.GetLoggerFromContext(c)

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		// headers are already out; all we can do is log
		log.Error("Failed to stream workbook", err, map[string]interface{}{
			"filename": filename,
		})
	}
}
