package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("BOOKJOHN_URL", "http://localhost:8080")
		token   = envOr("BOOKJOHN_TOKEN", "")
		out     = envOr("BOOKJOHN_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "bookjohn",
		Short: "CLI cliente para la Book API",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base de la API (env BOOKJOHN_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "Bearer token (env BOOKJOHN_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	cl := &client{HTTP: httpClient}
	// los flags se leen después de parsear
	sync := func() {
		cl.BaseURL = baseURL
		cl.Token = token
		cl.OutFormat = out
	}

	// register
	var regUsername, regEmail, regPassword string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Registrar un usuario nuevo",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			if regUsername == "" || regEmail == "" || regPassword == "" {
				return fmt.Errorf("--username, --email y --password son requeridos")
			}
			b, _ := json.Marshal(map[string]string{
				"username": regUsername,
				"email":    regEmail,
				"password": regPassword,
			})
			status, body, err := cl.do("POST", "/api/auth/register", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("register fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&regUsername, "username", "", "Nombre de usuario")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "Email")
	registerCmd.Flags().StringVar(&regPassword, "password", "", "Password (mínimo 8 caracteres)")

	// login
	var loginUser, loginPassword, loginCode string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login, imprime el access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			if loginUser == "" || loginPassword == "" {
				return fmt.Errorf("--user y --password son requeridos")
			}
			payload := map[string]string{
				"usernameOrEmail": loginUser,
				"password":        loginPassword,
			}
			if loginCode != "" {
				payload["code"] = loginCode
			}
			b, _ := json.Marshal(payload)
			status, body, err := cl.do("POST", "/api/auth/login", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("login fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginUser, "user", "", "Username o email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "Código TOTP o backup code (si MFA está habilitado)")

	// books
	booksCmd := &cobra.Command{Use: "books", Short: "Operaciones sobre el catálogo"}

	var listAuthor, listGenre string
	booksListCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar libros (con filtros opcionales)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			q := url.Values{}
			if listAuthor != "" {
				q.Set("author", listAuthor)
			}
			if listGenre != "" {
				q.Set("genre", listGenre)
			}
			path := "/api/books"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			status, body, err := cl.do("GET", path, nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	booksListCmd.Flags().StringVar(&listAuthor, "author", "", "Filtro por autor (substring)")
	booksListCmd.Flags().StringVar(&listGenre, "genre", "", "Filtro por género (substring)")

	var bkTitle, bkAuthor, bkISBN, bkGenre, bkDesc string
	var bkYear int
	booksCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Crear un libro",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			if bkTitle == "" || bkAuthor == "" || bkISBN == "" {
				return fmt.Errorf("--title, --author e --isbn son requeridos")
			}
			b, _ := json.Marshal(map[string]any{
				"title":           bkTitle,
				"author":          bkAuthor,
				"isbn":            bkISBN,
				"publicationYear": bkYear,
				"genre":           bkGenre,
				"description":     bkDesc,
			})
			status, body, err := cl.do("POST", "/api/books", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("create fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	booksCreateCmd.Flags().StringVar(&bkTitle, "title", "", "Título")
	booksCreateCmd.Flags().StringVar(&bkAuthor, "author", "", "Autor")
	booksCreateCmd.Flags().StringVar(&bkISBN, "isbn", "", "ISBN (único)")
	booksCreateCmd.Flags().IntVar(&bkYear, "year", 0, "Año de publicación")
	booksCreateCmd.Flags().StringVar(&bkGenre, "genre", "", "Género")
	booksCreateCmd.Flags().StringVar(&bkDesc, "description", "", "Descripción")

	booksCmd.AddCommand(booksListCmd)
	booksCmd.AddCommand(booksCreateCmd)

	// mfa (requiere --token)
	mfaCmd := &cobra.Command{
		Use:   "mfa",
		Short: "Ciclo de vida de dispositivos MFA (requiere --token)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("falta bearer token (flag --token o env BOOKJOHN_TOKEN)")
			}
			return nil
		},
	}

	var enrollName string
	mfaEnrollCmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enrolar un dispositivo TOTP (muestra secreto y backup codes UNA vez)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			b, _ := json.Marshal(map[string]string{"deviceName": enrollName})
			status, body, err := cl.do("POST", "/api/mfa/setup/totp", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("enroll fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	mfaEnrollCmd.Flags().StringVar(&enrollName, "name", "", "Nombre del dispositivo (default Authenticator App)")

	var verifyDevice int64
	var verifyCode string
	mfaVerifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verificar un dispositivo con un código TOTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			if verifyDevice <= 0 || verifyCode == "" {
				return fmt.Errorf("--device y --code son requeridos")
			}
			b, _ := json.Marshal(map[string]any{"deviceId": verifyDevice, "code": verifyCode})
			status, body, err := cl.do("POST", "/api/mfa/verify", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("verify fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	mfaVerifyCmd.Flags().Int64Var(&verifyDevice, "device", 0, "ID del dispositivo")
	mfaVerifyCmd.Flags().StringVar(&verifyCode, "code", "", "Código TOTP de 6 dígitos")

	mfaDevicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "Listar dispositivos MFA",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			status, body, err := cl.do("GET", "/api/mfa/devices", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}

	mfaCmd.AddCommand(mfaEnrollCmd)
	mfaCmd.AddCommand(mfaVerifyCmd)
	mfaCmd.AddCommand(mfaDevicesCmd)

	root.AddCommand(registerCmd)
	root.AddCommand(loginCmd)
	root.AddCommand(booksCmd)
	root.AddCommand(mfaCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
