package main

import (
	"context"
	"time"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/pagination"
	"github.com/AI-Fit-GMS/gms/core/table"
)

var memberColumns = []table.Column{
	{Key: "name", Header: "Name"},
	{Key: "email", Header: "Email"},
	{Key: "membership.type", Header: "Plan"},
	{Key: "membership.status", Header: "Status"},
	{Key: "membership.end_date", Header: "Expires", Render: func(rec table.Record) interface{} {
		if t, ok := rec.Get("membership.end_date").(time.Time); ok && !t.IsZero() {
			return t.Format("2006-01-02")
		}
		return nil
	}},
}

// listMembers prints one page of members as a terminal table.
func (cli *commandLine) listMembers(search string, page int) error {
	pr := core.PageRequest{Page: page, PerPage: cli.perPage}.Normalize(cli.perPage)
	members, total, err := cli.memberSvc.Query(context.Background(), member.QueryFilter{Search: search}, pr, nil)
	if err != nil {
		return err
	}

	tbl := table.New(table.Props{
		Data:    member.Records(members),
		Columns: memberColumns,
		Pagination: &pagination.Strip{
			CurrentPage:  pr.Page,
			TotalPages:   core.TotalPages(total, pr.PerPage),
			ItemsPerPage: pr.PerPage,
			TotalItems:   total,
		},
	})
	return table.WriteText(cli.out, tbl.Render())
}
