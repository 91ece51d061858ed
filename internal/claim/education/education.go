// Package education formats education history as a claim document.
package education

import (
	"valu/internal/claim"
	"valu/internal/vdxf"
)

// Data is one education entry. Field order is the document's key order.
type Data struct {
	Qualification string `json:"qualification"`
	Field         string `json:"field"`
	StartDate     string `json:"startdate"`
	EndDate       string `json:"enddate"`
	Person        string `json:"person"`
	Status        string `json:"status"`
	Description   string `json:"description"`
	ID            string `json:"id"`
}

// summary is the body placed in identity updates. It leaves out status.
type summary struct {
	Qualification string `json:"qualification"`
	Field         string `json:"field"`
	StartDate     string `json:"startdate"`
	EndDate       string `json:"enddate"`
	Person        string `json:"person"`
	Description   string `json:"description"`
	ID            string `json:"id"`
}

// Education wraps an education record of claim type education.
type Education struct {
	data     Data
	identity string
	record   *claim.Record
}

// New builds the record for data. identity is the default receiving
// identity for MMR exports and may be empty.
func New(data Data, identity string) (*Education, error) {
	doc, err := vdxf.MarshalOrdered(data)
	if err != nil {
		return nil, err
	}
	obj, err := vdxf.ReadObject(doc)
	if err != nil {
		return nil, err
	}
	return &Education{
		data:     data,
		identity: identity,
		record:   claim.NewRecord(claim.TypeEducation, obj),
	}, nil
}

// Record exposes the underlying claim record.
func (e *Education) Record() *claim.Record { return e.record }

// IdentityUpdateJSON merges the summary into the document under "body" and
// returns the record's identity update.
func (e *Education) IdentityUpdateJSON() (*vdxf.IdentityUpdate, error) {
	body := vdxf.Object{}
	if err := body.Set("body", summary{
		Qualification: e.data.Qualification,
		Field:         e.data.Field,
		StartDate:     e.data.StartDate,
		EndDate:       e.data.EndDate,
		Person:        e.data.Person,
		Description:   e.data.Description,
		ID:            e.data.ID,
	}); err != nil {
		return nil, err
	}
	e.record.SetData(body)
	return e.record.ToIdentityUpdateJSON()
}

// MMRData exports the record. An empty identity falls back to the one given
// to New; when both are empty no receiving identity leaf is added.
func (e *Education) MMRData(identity string) (vdxf.MMRData, error) {
	if identity == "" {
		identity = e.identity
	}
	return e.record.ToMMRData(identity)
}
