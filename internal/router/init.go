package router

import (
	"github.com/oksasatya/go-course-platform/internal/application"
	"github.com/oksasatya/go-course-platform/internal/container"
	handlers "github.com/oksasatya/go-course-platform/internal/interface/http"
	"github.com/oksasatya/go-course-platform/internal/router/modules"
)

func buildAuthModule() Module {
	var pictures application.PictureStorage
	if up := container.GetPictureStorage(); up != nil {
		pictures = up
	}
	var notifier application.Notifier
	if pub := container.GetRabbitPub(); pub != nil {
		notifier = pub
	}
	svc := application.NewAuthService(
		container.GetCredentialStore(),
		container.GetTokens(),
		pictures,
		notifier,
		container.GetLogger(),
	)
	return modules.NewAuthModule(handlers.NewAuthHandler(svc, container.GetLogger()), container.GetTokens())
}

func buildCourseModule() Module {
	svc := application.NewCourseService(
		container.GetCatalog(),
		container.GetES(),
		container.GetConfig().ESCoursesIndex,
		container.GetLogger(),
	)
	return modules.NewCourseModule(handlers.NewCourseHandler(svc, container.GetLogger()), container.GetTokens())
}

func buildExamModule() Module {
	svc := application.NewExamService(container.GetCatalog(), container.GetLogger())
	return modules.NewExamModule(handlers.NewExamHandler(svc, container.GetLogger()), container.GetTokens())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(buildAuthModule())
	r.Add(buildCourseModule())
	r.Add(buildExamModule())
	r.Add(modules.NewDebugModule(container.GetConfig().DebugMetricsEnabled))
}
