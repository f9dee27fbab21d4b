package main

import (
	"context"
	"flag"
	"fmt"

	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/models"
)

func runCourses(ctx context.Context, a *app, args []string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	sub := "mine"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "mine":
		enrollments, err := a.courses.MyCourses(ctx)
		if err != nil {
			return err
		}
		if len(enrollments) == 0 {
			a.println(a.t("course.browseOrEnterCode"))
			return nil
		}
		for _, e := range enrollments {
			a.printf("%-10s %-30s %s\n", e.Course.Code, e.Course.Name, e.CourseID)
		}
	case "available":
		available, err := a.courses.AvailableCourses(ctx)
		if err != nil {
			return err
		}
		if len(available) == 0 {
			a.println(a.t("course.noCoursesAvailable"))
			return nil
		}
		printCourses(a, available)
	case "enroll":
		if len(args) < 2 {
			return apperrors.NewValidationError("Usage: lovedu courses enroll <code>")
		}
		enrollment, err := a.chat.EnrollCourse(ctx, args[1])
		if err != nil {
			return err
		}
		a.printf("%s %s (%s)\n", a.t("course.courseEnrolled"), enrollment.Course.Code, enrollment.Course.Name)
	default:
		return apperrors.NewValidationError(fmt.Sprintf("Unknown courses command %q (mine, available, enroll)", sub))
	}
	return nil
}

func printCourses(a *app, courses []models.Course) {
	for _, c := range courses {
		state := ""
		if !c.Active() {
			state = "(inactive)"
		}
		a.printf("%-10s %-30s %s %s\n", c.Code, c.Name, c.ID, state)
	}
}

// showAdminSummary is the admin landing view: file counts per assistant and the course list.
func showAdminSummary(ctx context.Context, a *app) error {
	a.printf("== %s ==\n", a.t("common.adminPanel"))
	files, err := a.admin.LoadAll(ctx)
	for _, assistant := range models.Assistants {
		list, ok := files[assistant]
		if !ok {
			a.printf("%-20s unavailable\n", a.chat.AssistantName(assistant))
			continue
		}
		a.printf("%-20s %d %s\n", a.chat.AssistantName(assistant), len(list), a.t("common.files"))
	}
	if err != nil {
		a.logger.Warn().Err(err).Msg("Some file lists failed to load")
	}

	courses, err := a.courses.ListAll(ctx)
	if err != nil {
		return err
	}
	a.println()
	printCourses(a, courses)
	return nil
}

func runAdmin(ctx context.Context, a *app, args []string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if !a.auth.User().IsAdmin() {
		return apperrors.NewValidationError("Admin access required")
	}
	if len(args) == 0 {
		return showAdminSummary(ctx, a)
	}

	sub, rest := args[0], args[1:]
	need := func(n int, usage string) error {
		if len(rest) < n {
			return apperrors.NewValidationError("Usage: lovedu admin " + usage)
		}
		return nil
	}

	switch sub {
	case "files":
		if err := need(1, "files <assistant>"); err != nil {
			return err
		}
		files, err := a.admin.ListAssistantFiles(ctx, models.AssistantID(rest[0]))
		if err != nil {
			return err
		}
		printFiles(a, files)

	case "upload":
		if err := need(2, "upload <assistant> <file.pdf>"); err != nil {
			return err
		}
		f, err := a.admin.UploadAssistantFile(ctx, models.AssistantID(rest[0]), rest[1])
		if err != nil {
			return err
		}
		a.printf("Uploaded %s\n", f.FileName)

	case "delete":
		if err := need(2, "delete <assistant> <file name>"); err != nil {
			return err
		}
		if err := a.admin.DeleteAssistantFile(ctx, models.AssistantID(rest[0]), rest[1]); err != nil {
			return err
		}
		a.printf("Deleted %s\n", rest[1])

	case "download":
		if err := need(2, "download <assistant> <file name> [dir]"); err != nil {
			return err
		}
		path, err := a.admin.DownloadAssistantFile(ctx, models.AssistantID(rest[0]), rest[1], dirArg(rest, 2))
		if err != nil {
			return err
		}
		a.printf("Saved %s\n", path)

	case "course-create", "course-update":
		return adminCourseEdit(ctx, a, sub, rest)

	case "course-delete":
		if err := need(1, "course-delete <course id>"); err != nil {
			return err
		}
		if err := a.courses.Delete(ctx, rest[0]); err != nil {
			return err
		}
		a.println(a.t("course.courseDeleted"))

	case "course-files":
		if err := need(1, "course-files <course id>"); err != nil {
			return err
		}
		files, err := a.admin.ListCourseFiles(ctx, rest[0])
		if err != nil {
			return err
		}
		a.println("Behavior:")
		printFiles(a, files.Behavior)
		a.println("Content:")
		printFiles(a, files.Content)

	case "course-upload":
		if err := need(2, "course-upload <course id> <file.pdf> [behavior|content]"); err != nil {
			return err
		}
		var fileType models.FileType
		if len(rest) > 2 {
			fileType = models.FileType(rest[2])
		}
		f, err := a.admin.UploadCourseFile(ctx, rest[0], rest[1], fileType)
		if err != nil {
			return err
		}
		a.printf("Uploaded %s (%s)\n", f.FileName, f.EffectiveType())

	case "course-delete-file":
		if err := need(2, "course-delete-file <course id> <file name>"); err != nil {
			return err
		}
		if err := a.admin.DeleteCourseFile(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		a.printf("Deleted %s\n", rest[1])

	case "course-download":
		if err := need(2, "course-download <course id> <file name> [dir]"); err != nil {
			return err
		}
		path, err := a.admin.DownloadCourseFile(ctx, rest[0], rest[1], dirArg(rest, 2))
		if err != nil {
			return err
		}
		a.printf("Saved %s\n", path)

	default:
		return apperrors.NewValidationError(fmt.Sprintf("Unknown admin command %q", sub))
	}
	return nil
}

func adminCourseEdit(ctx context.Context, a *app, sub string, args []string) error {
	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	var in models.CourseInput
	fs.StringVar(&in.Code, "code", "", "Course code")
	fs.StringVar(&in.Name, "name", "", "Course name")
	fs.StringVar(&in.Description, "description", "", "Course description")

	if sub == "course-create" {
		if err := fs.Parse(args); err != nil {
			return err
		}
		course, err := a.courses.Create(ctx, in)
		if err != nil {
			return err
		}
		a.printf("%s %s %s\n", a.t("course.courseCreated"), course.Code, course.ID)
		return nil
	}

	if len(args) == 0 {
		return apperrors.NewValidationError("Usage: lovedu admin course-update <course id> [-code] [-name] [-description]")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	course, err := a.courses.Update(ctx, args[0], in)
	if err != nil {
		return err
	}
	a.printf("%s %s %s\n", a.t("course.courseUpdated"), course.Code, course.Name)
	return nil
}

func printFiles(a *app, files []models.UploadedFile) {
	if len(files) == 0 {
		a.println("  (none)")
		return
	}
	for _, f := range files {
		size := "-"
		if f.FileSize != nil {
			size = fmt.Sprintf("%d KB", (*f.FileSize+1023)/1024)
		}
		a.printf("  %-40s %10s  %s\n", f.FileName, size, f.UploadedAt.Local().Format("2006-01-02 15:04"))
	}
}

func dirArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return "."
}
