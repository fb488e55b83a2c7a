// Package models contains the GORM persistence models.
//
// Two schemas live here: the control-plane schema (tenants, users) stored in
// the shared control database, and the tenant schema (companies, employees,
// invoices, audit logs) stored in each tenant's own data partition. Tenant
// schema rows are double-keyed: tenant_id isolates partitions that share a
// physical database, company_id isolates scopes inside one tenant.
package models
