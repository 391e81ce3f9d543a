// controller/api_init.go
package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (ctrl *controller) apiInit(e *echo.Echo) {
	api := e.Group("/api")
	api.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	api.GET("/customers", ctrl.apiCustomerList)
	api.POST("/customers", ctrl.apiCustomerCreate)
	api.PUT("/customers/:id", ctrl.apiCustomerUpdate)
	api.DELETE("/customers/:id", ctrl.apiCustomerDelete)
	api.GET("/customers/:id/unbilled-time-entries", ctrl.apiCustomerUnbilledTimeEntries)

	api.GET("/projects", ctrl.apiProjectList)
	api.POST("/projects", ctrl.apiProjectCreate)
	api.PUT("/projects/:id", ctrl.apiProjectUpdate)
	api.DELETE("/projects/:id", ctrl.apiProjectDelete)

	api.GET("/time-entries", ctrl.apiTimeEntryList)
	api.POST("/time-entries", ctrl.apiTimeEntryCreate)
	api.PUT("/time-entries/:id", ctrl.apiTimeEntryUpdate)
	api.DELETE("/time-entries/:id", ctrl.apiTimeEntryDelete)

	api.GET("/invoices", ctrl.apiInvoiceList)
	api.POST("/invoices", ctrl.apiInvoiceCreate)
	api.POST("/invoices/from-time-entries", ctrl.apiInvoiceFromTimeEntries)
	api.GET("/invoices/:id", ctrl.apiInvoiceGet)
	api.PUT("/invoices/:id", ctrl.apiInvoiceUpdate)
	api.DELETE("/invoices/:id", ctrl.apiInvoiceDelete)
	api.POST("/invoices/:id/send", ctrl.apiInvoiceSend)

	api.GET("/quotes", ctrl.apiQuoteList)
	api.POST("/quotes", ctrl.apiQuoteCreate)
	api.GET("/quotes/:id", ctrl.apiQuoteGet)
	api.PUT("/quotes/:id", ctrl.apiQuoteUpdate)
	api.DELETE("/quotes/:id", ctrl.apiQuoteDelete)

	api.GET("/accounting/entries", ctrl.apiAccountingEntryList)
	api.POST("/accounting/entries", ctrl.apiAccountingEntryCreate)
	api.PUT("/accounting/entries/:id", ctrl.apiAccountingEntryUpdate)
	api.DELETE("/accounting/entries/:id", ctrl.apiAccountingEntryDelete)
	api.GET("/accounting/categories", ctrl.apiAccountingCategoryList)
	api.POST("/accounting/categories", ctrl.apiAccountingCategoryCreate)
	api.DELETE("/accounting/categories/:id", ctrl.apiAccountingCategoryDelete)
	api.GET("/accounting/vat-rates", ctrl.apiVATRateList)
	api.POST("/accounting/vat-rates", ctrl.apiVATRateCreate)
	api.GET("/accounting/reports/summary", ctrl.apiAccountingSummary)
	api.GET("/accounting/reports/export", ctrl.apiAccountingExport)
	api.GET("/accounting/qr-templates", ctrl.apiQRTemplateList)
	api.POST("/accounting/qr-templates", ctrl.apiQRTemplateCreate)
	api.DELETE("/accounting/qr-templates/:id", ctrl.apiQRTemplateDelete)
	api.GET("/accounting/qr-code/:id", ctrl.apiQRCode)

	api.GET("/company-settings", ctrl.apiCompanySettingsGet)
	api.POST("/company-settings", ctrl.apiCompanySettingsSave)
}
