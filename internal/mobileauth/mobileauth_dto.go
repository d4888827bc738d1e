package mobileauth

type LoginRequest struct {
	Usuario     string `json:"usuario" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Recordar    bool   `json:"recordar"`
	Dispositivo string `json:"dispositivo"`
}

type EmployeeInfo struct {
	ID             string `json:"id"`
	NumeroEmpleado string `json:"numero_empleado"`
	Nombre         string `json:"nombre"`
}

type LoginResponse struct {
	Token           string       `json:"token"`
	Expira          string       `json:"expira"`
	CambiarPassword bool         `json:"cambiar_password"`
	Empleado        EmployeeInfo `json:"empleado"`
}

type ChangePasswordRequest struct {
	PasswordNueva string `json:"password_nueva" binding:"required"`
}

type VerifyResponse struct {
	Valida          bool         `json:"valida"`
	CambiarPassword bool         `json:"cambiar_password"`
	Empleado        EmployeeInfo `json:"empleado"`
}
