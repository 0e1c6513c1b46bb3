package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/models"
	"github.com/Skryldev/jobly/sqlbuild"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/schema"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// decodeQuery fills dst from the query string using its `schema` tags.
func decodeQuery(c *fiber.Ctx, dst any) error {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		values.Add(string(k), string(v))
	})
	if err := queryDecoder.Decode(dst, values); err != nil {
		return apperr.Wrap(apperr.ErrBadRequest, err, "invalid query string")
	}
	return nil
}

// parseBody decodes the request body in key order and checks it against s.
func parseBody(c *fiber.Ctx, s models.Schema) (sqlbuild.Fields, error) {
	fs, err := sqlbuild.ParseFields(c.Body())
	if err != nil {
		return nil, err
	}
	if err := s.Validate(fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// bindBody validates the body against s and then decodes it into dst.
func bindBody(c *fiber.Ctx, s models.Schema, dst any) error {
	if _, err := parseBody(c, s); err != nil {
		return err
	}
	if err := c.App().Config().JSONDecoder(c.Body(), dst); err != nil {
		return apperr.Wrap(apperr.ErrBadRequest, err, "invalid request body")
	}
	return nil
}

// jobID parses the :id route parameter. Anything that is not an integer
// cannot name a job.
func jobID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.NotFound("No job with id = %s", raw)
	}
	return id, nil
}

type companyQuery struct {
	Name         string `schema:"name"`
	MinEmployees int64  `schema:"minEmployees"`
	MaxEmployees int64  `schema:"maxEmployees"`
}

func (q companyQuery) filter() (models.CompanyFilter, error) {
	if q.MinEmployees < 0 || q.MaxEmployees < 0 {
		return models.CompanyFilter{}, apperr.BadRequest("employee bounds must not be negative")
	}
	if q.MinEmployees > models.MaxInt || q.MaxEmployees > models.MaxInt {
		return models.CompanyFilter{}, apperr.BadRequest(fmt.Sprintf("employee bounds must be <= %d", models.MaxInt))
	}
	f := models.CompanyFilter{Name: q.Name, MinEmployees: q.MinEmployees, MaxEmployees: q.MaxEmployees}
	return f, f.Validate()
}

type jobQuery struct {
	Title     string `schema:"title"`
	MinSalary int64  `schema:"minSalary"`
	HasEquity string `schema:"hasEquity"`
}

func (q jobQuery) filter() (models.JobFilter, error) {
	if q.MinSalary < 0 {
		return models.JobFilter{}, apperr.BadRequest("minSalary must not be negative")
	}
	if q.MinSalary > models.MaxInt {
		return models.JobFilter{}, apperr.BadRequest(fmt.Sprintf("minSalary must be <= %d", models.MaxInt))
	}
	return models.JobFilter{
		Title:     q.Title,
		MinSalary: q.MinSalary,
		HasEquity: q.HasEquity == "true",
	}, nil
}
