package api

import (
	"github.com/Skryldev/jobly/models"
	"github.com/gofiber/fiber/v2"
)

// ─────────────────────────────────────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────────────────────────────────────

func (s *server) token(c *fiber.Ctx) error {
	var p models.LoginParams
	if err := bindBody(c, models.UserAuthSchema, &p); err != nil {
		return err
	}
	u, err := s.Users.Authenticate(c.UserContext(), p.Username, p.Password)
	if err != nil {
		return err
	}
	token, err := s.Signer.Sign(u)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token})
}

func (s *server) register(c *fiber.Ctx) error {
	var p models.CreateUserParams
	if err := bindBody(c, models.UserRegisterSchema, &p); err != nil {
		return err
	}
	p.IsAdmin = false

	u, err := s.Users.Register(c.UserContext(), p)
	if err != nil {
		return err
	}
	token, err := s.Signer.Sign(u)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"token": token})
}

// ─────────────────────────────────────────────────────────────────────────────
// Companies
// ─────────────────────────────────────────────────────────────────────────────

func (s *server) createCompany(c *fiber.Ctx) error {
	var p models.CreateCompanyParams
	if err := bindBody(c, models.CompanyNewSchema, &p); err != nil {
		return err
	}
	company, err := s.Companies.Create(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"company": company})
}

func (s *server) listCompanies(c *fiber.Ctx) error {
	var q companyQuery
	if err := decodeQuery(c, &q); err != nil {
		return err
	}
	f, err := q.filter()
	if err != nil {
		return err
	}
	companies, err := s.Companies.FindAll(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"companies": companies})
}

func (s *server) getCompany(c *fiber.Ctx) error {
	company, err := s.Companies.Get(c.UserContext(), c.Params("handle"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"company": company})
}

func (s *server) updateCompany(c *fiber.Ctx) error {
	data, err := parseBody(c, models.CompanyUpdateSchema)
	if err != nil {
		return err
	}
	company, err := s.Companies.Update(c.UserContext(), c.Params("handle"), data)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"company": company})
}

func (s *server) deleteCompany(c *fiber.Ctx) error {
	handle := c.Params("handle")
	if err := s.Companies.Remove(c.UserContext(), handle); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": handle})
}

// ─────────────────────────────────────────────────────────────────────────────
// Jobs
// ─────────────────────────────────────────────────────────────────────────────

func (s *server) createJob(c *fiber.Ctx) error {
	var p models.CreateJobParams
	if err := bindBody(c, models.JobNewSchema, &p); err != nil {
		return err
	}
	job, err := s.Jobs.Create(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"job": job})
}

func (s *server) listJobs(c *fiber.Ctx) error {
	var q jobQuery
	if err := decodeQuery(c, &q); err != nil {
		return err
	}
	f, err := q.filter()
	if err != nil {
		return err
	}
	jobs, err := s.Jobs.FindAll(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

func (s *server) getJob(c *fiber.Ctx) error {
	id, err := jobID(c)
	if err != nil {
		return err
	}
	job, err := s.Jobs.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"job": job})
}

func (s *server) updateJob(c *fiber.Ctx) error {
	id, err := jobID(c)
	if err != nil {
		return err
	}
	data, err := parseBody(c, models.JobUpdateSchema)
	if err != nil {
		return err
	}
	job, err := s.Jobs.Update(c.UserContext(), id, data)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"job": job})
}

func (s *server) deleteJob(c *fiber.Ctx) error {
	id, err := jobID(c)
	if err != nil {
		return err
	}
	deleted, err := s.Jobs.Remove(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

func (s *server) createUser(c *fiber.Ctx) error {
	var p models.CreateUserParams
	if err := bindBody(c, models.UserNewSchema, &p); err != nil {
		return err
	}
	u, err := s.Users.Register(c.UserContext(), p)
	if err != nil {
		return err
	}
	token, err := s.Signer.Sign(u)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u, "token": token})
}

func (s *server) listUsers(c *fiber.Ctx) error {
	users, err := s.Users.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}

func (s *server) getUser(c *fiber.Ctx) error {
	u, err := s.Users.Get(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": u})
}

func (s *server) updateUser(c *fiber.Ctx) error {
	data, err := parseBody(c, models.UserUpdateSchema)
	if err != nil {
		return err
	}
	u, err := s.Users.Update(c.UserContext(), c.Params("username"), data)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": u})
}

func (s *server) deleteUser(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.Users.Remove(c.UserContext(), username); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": username})
}
